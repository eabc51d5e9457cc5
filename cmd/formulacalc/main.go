// formulacalc evaluates spreadsheet formulas against a workbook loaded from
// YAML, either once with -e or interactively.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/vogtb/go-spreadsheet/packages/formula"
)

const (
	historyFile = ".formulacalc_history"
	prompt      = "fx> "
)

const helpText = `commands:
  :sheets              list worksheets
  :sheet NAME          enter formulas on worksheet NAME
  :set A1 VALUE        store a number, text, TRUE/FALSE, an error code or
                       the result of =FORMULA in a cell
  :functions           list built-in functions
  :quit                exit
anything else is evaluated as a formula`

func main() {
	log.SetFlags(0)
	log.SetPrefix("formulacalc: ")

	workbookPath := flag.String("workbook", "", "YAML workbook to load")
	sheetName := flag.String("sheet", "", "worksheet formulas are entered on (default: the first one)")
	expression := flag.String("e", "", "evaluate a formula, print the result and exit")
	flag.Parse()

	wb, err := loadWorkbook(*workbookPath)
	if err != nil {
		log.Fatal(err)
	}
	s, err := newSession(wb, *sheetName)
	if err != nil {
		log.Fatal(err)
	}

	if *expression != "" {
		out, err := s.evaluate(*expression)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out)
		return
	}
	os.Exit(repl(s))
}

// session is the state shared by -e and the REPL
type session struct {
	workbook *formula.Workbook
	current  *formula.Worksheet
}

func newSession(wb *formula.Workbook, sheetName string) (*session, error) {
	s := &session{workbook: wb}
	if sheetName == "" {
		s.current = wb.Worksheets()[0]
		return s, nil
	}
	ws, ok := wb.Worksheet(sheetName)
	if !ok {
		return nil, fmt.Errorf("worksheet %q does not exist", sheetName)
	}
	s.current = ws
	return s, nil
}

func (s *session) evaluate(src string) (string, error) {
	v, err := s.workbook.Calculate(src, s.current.ID())
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// handle runs one line of REPL input and returns what to print
func (s *session) handle(line string) (out string, quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}
	if !strings.HasPrefix(line, ":") {
		out, err = s.evaluate(line)
		return out, false, err
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return "", true, nil
	case ":help":
		return helpText, false, nil
	case ":sheets":
		var b strings.Builder
		for i, ws := range s.workbook.Worksheets() {
			if i > 0 {
				b.WriteByte('\n')
			}
			rows, cols := ws.Dimensions()
			marker := " "
			if ws == s.current {
				marker = "*"
			}
			fmt.Fprintf(&b, "%s %s (%dx%d, %d cells)", marker, ws.Name(), rows, cols, ws.TotalCells())
		}
		return b.String(), false, nil
	case ":sheet":
		ws, ok := s.workbook.Worksheet(rest)
		if !ok {
			return "", false, fmt.Errorf("worksheet %q does not exist", rest)
		}
		s.current = ws
		return "", false, nil
	case ":set":
		address, input, _ := strings.Cut(rest, " ")
		return s.set(address, strings.TrimSpace(input))
	case ":functions":
		return strings.Join(formula.NewDefaultRegistry().Names(), " "), false, nil
	default:
		return "", false, fmt.Errorf("unknown command %s, type :help", cmd)
	}
}

func (s *session) set(address, input string) (string, bool, error) {
	row, col, ok := formula.ParseCellAddress(address)
	if !ok {
		return "", false, fmt.Errorf("invalid cell address %q", address)
	}

	var v formula.Value
	if strings.HasPrefix(input, "=") {
		result, err := s.workbook.Calculate(input, s.current.ID())
		if err != nil {
			return "", false, err
		}
		v = result
	} else {
		v = parseInput(input)
	}
	if err := s.current.Set(row, col, v); err != nil {
		return "", false, err
	}
	return v.String(), false, nil
}

// parseInput reads typed cell input the way a spreadsheet entry bar does
func parseInput(input string) formula.Value {
	switch strings.ToUpper(input) {
	case "":
		return formula.Null{}
	case "TRUE":
		return formula.Boolean(true)
	case "FALSE":
		return formula.Boolean(false)
	}
	if code, ok := formula.ParseErrorCode(strings.ToUpper(input)); ok {
		return formula.NewSpreadsheetError(code)
	}
	if n, ok := formula.ToNumberValue(formula.Text(input)).(formula.Number); ok {
		return n
	}
	return formula.Text(input)
}

func repl(s *session) int {
	fmt.Println("formulacalc: type :help for commands, Ctrl+D exits")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completer(formula.NewDefaultRegistry().Names()))

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(s.current.Name() + " " + prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if err != nil {
			log.Print(err)
			return 1
		}

		out, quit, err := s.handle(line)
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if quit {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}

// completer completes the function name being typed at the end of the line
func completer(names []string) liner.Completer {
	return func(line string) []string {
		start := strings.LastIndexFunc(line, func(r rune) bool {
			return !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r == '.')
		}) + 1
		word := strings.ToUpper(line[start:])
		if word == "" {
			return nil
		}
		var out []string
		for _, name := range names {
			if strings.HasPrefix(name, word) {
				out = append(out, line[:start]+name+"(")
			}
		}
		return out
	}
}
