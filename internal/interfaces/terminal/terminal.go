package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	xterminal "golang.org/x/crypto/ssh/terminal"
)

// ErrNoInput is returned when the user gives a blank answer to a mandatory
// prompt.
var ErrNoInput = errors.New("no input given")

// Terminal is the text UI of the backup tool. It implements the share sheet,
// the presenter and the authenticator used by the backup flow, and it's
// shared by the child flows created by the FlowFactory.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool

	// prompt serializes user interactions.
	prompt sync.Mutex
	// lock guards out and the active password flow.
	lock           sync.Mutex
	activePassword *passwordFlow
}

// New returns a Terminal reading from in and writing to out. Secrets are read
// with echo disabled if in is a TTY.
func New(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		in:  bufio.NewReader(in),
		out: out,
		fd:  -1,
	}
	if f, ok := in.(*os.File); ok && xterminal.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		t.tty = true
	}
	return t
}

// Authenticate asks the current password of the user.
func (t *Terminal) Authenticate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.prompt.Lock()
	defer t.prompt.Unlock()

	password, err := t.readSecret(prompt + ": ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", ErrNoInput
	}
	return password, nil
}

// Present asks the user for a directory where to save a copy of the file at
// path. A blank answer dismisses the share.
func (t *Terminal) Present(path string, done func(completed bool)) {
	go func() {
		t.prompt.Lock()
		defer t.prompt.Unlock()

		for {
			dir, err := t.readLine(
				"Directory where to save the backup file (leave blank to skip): ",
			)
			if err != nil || dir == "" {
				done(false)
				return
			}

			dest, err := copyFile(path, dir)
			if err != nil {
				t.printf("Failed to save backup file: %s\n", err)
				continue
			}
			t.printf("Backup file saved to %s\n", dest)
			done(true)
			return
		}
	}()
}

func (t *Terminal) ShowError(err error) {
	t.printf("Error: %s\n", err)

	t.lock.Lock()
	flow := t.activePassword
	t.lock.Unlock()
	if flow != nil {
		flow.resume()
	}
}

func (t *Terminal) ShowSuccessOverlay(account string) {
	t.printf("Backup of %s completed\n", account)
}

// Println writes a line to the terminal output.
func (t *Terminal) Println(a ...interface{}) {
	t.lock.Lock()
	defer t.lock.Unlock()
	fmt.Fprintln(t.out, a...)
}

func (t *Terminal) printf(format string, a ...interface{}) {
	t.lock.Lock()
	defer t.lock.Unlock()
	fmt.Fprintf(t.out, format, a...)
}

func (t *Terminal) readLine(prompt string) (string, error) {
	t.printf("%s", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) readSecret(prompt string) (string, error) {
	if !t.tty {
		return t.readLine(prompt)
	}

	t.printf("%s", prompt)
	secret, err := xterminal.ReadPassword(t.fd)
	t.printf("\n")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// confirm asks a yes/no question until a valid answer is given.
func (t *Terminal) confirm(prompt string) (bool, error) {
	for {
		reply, err := t.readLine(prompt + " (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(reply) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (t *Terminal) setActivePassword(flow *passwordFlow) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.activePassword = flow
}

func (t *Terminal) clearActivePassword(flow *passwordFlow) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.activePassword == flow {
		t.activePassword = nil
	}
}

func copyFile(src, dir string) (string, error) {
	dir, err := cleanAndExpandPath(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dest := filepath.Join(dir, filepath.Base(src))
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	log.WithField("path", dest).Debug("backup file copied")
	return dest, nil
}

// cleanAndExpandPath expands environment variables and a leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = strings.Replace(path, "~", home, 1)
	}
	return filepath.Clean(os.ExpandEnv(path)), nil
}
