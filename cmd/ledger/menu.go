package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	logs "github.com/danmuck/smplog"
)

var errMenuBack = errors.New("menu back")
var errMenuExit = errors.New("menu exit")

func isInteractiveInput(r *os.File) bool {
	info, err := r.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func isInteractiveReader(input io.Reader) bool {
	file, ok := input.(*os.File)
	if !ok {
		// Non-file readers (e.g. buffered wrappers) are treated as interactive.
		return true
	}
	return isInteractiveInput(file)
}

func getBufferedReader(input io.Reader) *bufio.Reader {
	if reader, ok := input.(*bufio.Reader); ok {
		return reader
	}
	return bufio.NewReader(input)
}

type menuEntry struct {
	key    string
	action MenuAction
	label  string
}

var menuEntries = []menuEntry{
	{key: "1", action: ActionSubmit, label: "Add a new transaction value"},
	{key: "2", action: ActionMine, label: "Mine a new block"},
	{key: "3", action: ActionChain, label: "Output the blockchain blocks"},
	{key: "4", action: ActionPending, label: "Output pending transactions"},
	{key: "5", action: ActionVerify, label: "Check transaction validity"},
	{key: "6", action: ActionBalance, label: "Look up a balance"},
	{key: "7", action: ActionParticipants, label: "List participants"},
	{key: "8", action: ActionWalletNew, label: "Create wallet"},
	{key: "9", action: ActionWalletLoad, label: "Load wallet"},
	{key: "0", action: ActionWalletSave, label: "Save keys"},
}

// menuChoice maps a menu key or action name to an action.
func menuChoice(choice string) (MenuAction, error) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	switch choice {
	case "q", "quit", "exit":
		return "", errMenuExit
	case "":
		return "", errMenuBack
	}
	for _, e := range menuEntries {
		if choice == e.key {
			return e.action, nil
		}
	}
	if action, ok := actionAliases[choice]; ok {
		return action, nil
	}
	return "", fmt.Errorf("input was invalid, please pick a value from the list: %q", choice)
}

func printMenu(hostingID string) {
	logs.Printf("\n")
	logs.Titlef("--[ dps_ledger | %s ]--\n\n", shortID(hostingID))
	for _, e := range menuEntries {
		logs.Menuf("  %s: %s\n", e.key, e.label)
	}
	logs.Menuf("  q: Quit\n")
	logs.Printf("\n")
	logs.DividerRune(0, '=')
}

// promptAction reads one menu selection. EOF is treated as quit.
func promptAction(reader *bufio.Reader, hostingID string) (MenuAction, error) {
	for {
		printMenu(hostingID)
		logs.Promptf("\nYour choice: ")

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && strings.TrimSpace(line) == "" {
				return "", errMenuExit
			}
			if err != io.EOF {
				return "", fmt.Errorf("failed to read action: %w", err)
			}
		}

		action, err := menuChoice(line)
		switch {
		case err == nil:
			return action, nil
		case errors.Is(err, errMenuExit):
			return "", err
		case errors.Is(err, errMenuBack):
			continue
		default:
			logs.StatusWarn(err.Error())
		}
	}
}
