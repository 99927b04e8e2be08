// Command client is the interactive text-menu front for the account server.
// It speaks the pipe-delimited protocol over a single TCP connection and
// surfaces push notifications by polling the socket with a short read
// deadline between menu rounds, so no listener goroutine is needed.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	title   = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	alert   = color.New(color.FgYellow, color.Bold)
)

func main() {
	addr := flag.String("addr", "localhost:4000", "server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		failure.Println("could not connect to the server:", err)
		os.Exit(1)
	}
	defer conn.Close()
	success.Printf("connected to IFBank at %s\n", *addr)

	c := &client{conn: conn, stdin: bufio.NewReader(os.Stdin)}
	c.mainMenu()
}

type client struct {
	conn  net.Conn
	stdin *bufio.Reader
}

// request sends one command and blocks for its response.
func (c *client) request(cmd string) string {
	c.conn.SetReadDeadline(time.Time{})
	if _, err := c.conn.Write([]byte(cmd)); err != nil {
		failure.Println("connection to the server lost")
		os.Exit(1)
	}
	buf := make([]byte, 1024)
	n, err := c.conn.Read(buf)
	if err != nil {
		failure.Println("connection to the server lost")
		os.Exit(1)
	}
	return strings.TrimSpace(string(buf[:n]))
}

// pollNotifications does a short non-blocking read to surface pushed
// transfer alerts between menu rounds.
func (c *client) pollNotifications() {
	c.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	defer c.conn.SetReadDeadline(time.Time{})

	buf := make([]byte, 1024)
	n, err := c.conn.Read(buf)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return
		}
		failure.Println("connection to the server lost")
		os.Exit(1)
	}
	msg := strings.TrimSpace(string(buf[:n]))
	if strings.HasPrefix(msg, "[NOTIFY]") {
		fmt.Println()
		alert.Println(strings.Repeat("=", 50))
		alert.Println(msg)
		alert.Println(strings.Repeat("=", 50))
	}
}

func (c *client) readLine(prompt string) string {
	fmt.Print(prompt)
	line, err := c.stdin.ReadString('\n')
	if err != nil {
		os.Exit(0)
	}
	return strings.TrimSpace(line)
}

func (c *client) readPassword(prompt string) string {
	fmt.Print(prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		// Not a terminal (e.g. piped input): fall back to a plain read.
		return c.readLine("")
	}
	return strings.TrimSpace(string(pw))
}

func printResponse(resp string) {
	if strings.HasPrefix(resp, "[OK]") {
		success.Println(resp)
	} else {
		failure.Println(resp)
	}
}

func (c *client) mainMenu() {
	for {
		title.Println("\n--- Welcome to IFBank ---")
		fmt.Println("1. Log in")
		fmt.Println("2. Create account")
		fmt.Println("3. Quit")

		switch c.readLine("option: ") {
		case "1":
			cpf := c.readLine("CPF: ")
			pw := c.readPassword("password: ")
			resp := c.request(fmt.Sprintf("LOGIN|%s|%s", cpf, pw))
			if strings.HasPrefix(resp, "[OK]|") {
				parts := strings.Split(resp, "|")
				if len(parts) == 3 {
					c.loggedMenu(parts[1], parts[2])
					continue
				}
			}
			printResponse(resp)
		case "2":
			name := c.readLine("full name: ")
			cpf := c.readLine("CPF (digits only): ")
			pw := c.readPassword("choose a password: ")
			confirm := c.readPassword("confirm password: ")
			if pw != confirm {
				failure.Println("passwords do not match")
				continue
			}
			printResponse(c.request(fmt.Sprintf("CRIAR|%s|%s|%s", name, cpf, pw)))
		case "3":
			fmt.Println("Thank you for using IFBank.")
			return
		default:
			fmt.Println("invalid option")
		}
	}
}

func (c *client) loggedMenu(name, accountID string) {
	for {
		c.pollNotifications()

		title.Printf("\n--- IFBank | %s (account %s) ---\n", name, accountID)
		fmt.Println("1. Balance")
		fmt.Println("2. Deposit")
		fmt.Println("3. Withdraw")
		fmt.Println("4. Transfer")
		fmt.Println("5. Log out")

		switch c.readLine("option: ") {
		case "1":
			printResponse(c.request("SALDO"))
		case "2":
			amount := c.readLine("amount to deposit: R$ ")
			printResponse(c.request(fmt.Sprintf("DEPOSITAR|%s", amount)))
		case "3":
			amount := c.readLine("amount to withdraw: R$ ")
			pw := c.readPassword("password to confirm: ")
			printResponse(c.request(fmt.Sprintf("SACAR|%s|%s", amount, pw)))
		case "4":
			dest := c.readLine("destination account: ")
			amount := c.readLine("amount to transfer: R$ ")
			pw := c.readPassword("password to confirm: ")
			printResponse(c.request(fmt.Sprintf("TRANSFERIR|%s|%s|%s", dest, amount, pw)))
		case "5":
			printResponse(c.request("LOGOUT"))
			return
		default:
			fmt.Println("invalid option")
		}
	}
}
