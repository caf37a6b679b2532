package tube

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/chzyer/readline"
)

// Prompt reads operator input one line at a time.
// Implemented by ReadlinePrompt.
type Prompt interface {
	// Readline blocks until a full line is entered. Any error (EOF,
	// interrupt, closed prompt) ends the interactive session.
	Readline() (string, error)

	// Close releases the prompt and unblocks a pending Readline.
	Close() error
}

// ReadlinePrompt is a terminal prompt with line editing.
type ReadlinePrompt struct {
	rl        *readline.Instance
	closeOnce sync.Once
	closeErr  error
}

// NewReadlinePrompt creates a terminal prompt showing the given string.
func NewReadlinePrompt(prompt string) (*ReadlinePrompt, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &ReadlinePrompt{rl: rl}, nil
}

// Readline reads one line from the terminal.
func (p *ReadlinePrompt) Readline() (string, error) {
	return p.rl.Readline()
}

// Stdout returns a writer that coordinates with the input line.
// Peer output written here does not garble what the operator is typing.
func (p *ReadlinePrompt) Stdout() io.Writer {
	return p.rl.Stdout()
}

// Close closes the prompt. It is safe to call Close multiple times.
func (p *ReadlinePrompt) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.rl.Close()
	})
	return p.closeErr
}

// Interactive hands the connection to the operator at the terminal until
// input ends or the connection fails.
func (t *Tube) Interactive() error {
	prompt, err := NewReadlinePrompt(t.config.Prompt)
	if err != nil {
		return err
	}
	return t.Bridge(prompt, prompt.Stdout())
}

// Bridge runs an interactive session: a background reader copies everything
// the peer sends to out, while the calling goroutine sends each prompt line
// followed by a newline.
//
// The reader uses this tube's handle and Buffer, so bytes buffered before the
// call are shown first. The writer uses a duplicate handle. The session ends
// when the prompt fails, a send fails, or the reader hits a read error; the
// reader is always joined before Bridge returns and the prompt is closed.
// After a send or read failure both handles are closed. The peer closing the
// connection is a normal end and returns nil.
func (t *Tube) Bridge(prompt Prompt, out io.Writer) error {
	dup, ok := t.transport.(Duplicator)
	if !ok {
		return ErrNotDuplicable
	}
	wt, err := dup.Duplicate()
	if err != nil {
		return fmt.Errorf("failed to duplicate transport: %w", err)
	}
	writer := New(wt, t.config)

	var promptOnce sync.Once
	closePrompt := func() {
		promptOnce.Do(func() { _ = prompt.Close() })
	}

	if t.config.Logger != nil {
		t.config.Logger.Info("Switching to interactive mode")
	}

	stop := make(chan struct{})
	readDone := make(chan error, 1)
	go func() {
		err := t.readLoop(stop, out)
		if err != nil {
			// Unblock the writer waiting on operator input.
			closePrompt()
		}
		readDone <- err
	}()

	var sendErr error
	for {
		line, err := prompt.Readline()
		if err != nil {
			break
		}
		if err := writer.SendLine([]byte(line)); err != nil {
			sendErr = err
			break
		}
	}

	close(stop)
	readErr := <-readDone
	closePrompt()

	if sendErr == nil && readErr == nil {
		return nil
	}

	_ = writer.Close()
	_ = t.Close()

	if sendErr != nil {
		return fmt.Errorf("interactive send failed: %w", sendErr)
	}
	if errors.Is(readErr, io.EOF) {
		if t.config.Logger != nil {
			t.config.Logger.Info("Got EOF while reading in interactive")
		}
		return nil
	}
	return fmt.Errorf("interactive receive failed: %w", readErr)
}

// readLoop copies peer output to out until stop is closed or a read fails.
func (t *Tube) readLoop(stop <-chan struct{}, out io.Writer) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		data, err := t.Clean(t.config.CleanTimeout)
		if len(data) > 0 {
			if _, werr := out.Write(data); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
