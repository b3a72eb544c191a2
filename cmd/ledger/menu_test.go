package main

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func TestMenuChoice(t *testing.T) {
	tests := []struct {
		choice  string
		want    MenuAction
		wantErr error
	}{
		{choice: "1", want: ActionSubmit},
		{choice: "2\n", want: ActionMine},
		{choice: " 5 ", want: ActionVerify},
		{choice: "0", want: ActionWalletSave},
		{choice: "Mine", want: ActionMine},
		{choice: "wallet_load", want: ActionWalletLoad},
		{choice: "q", wantErr: errMenuExit},
		{choice: "", wantErr: errMenuBack},
	}

	for _, tc := range tests {
		t.Run(strings.TrimSpace(tc.choice), func(t *testing.T) {
			got, err := menuChoice(tc.choice)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("menuChoice(%q) error = %v, want %v", tc.choice, err, tc.wantErr)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("menuChoice(%q) = %q, %v, want %q", tc.choice, got, err, tc.want)
			}
		})
	}

	if _, err := menuChoice("42"); err == nil || !strings.Contains(err.Error(), "invalid") {
		t.Fatalf("menuChoice(42) error = %v, want invalid input error", err)
	}
}

func TestPromptActionSkipsInvalidInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("nope\n\n3\n"))
	action, err := promptAction(reader, "host")
	if err != nil {
		t.Fatalf("promptAction() failed: %v", err)
	}
	if action != ActionChain {
		t.Fatalf("promptAction() = %q, want %q", action, ActionChain)
	}

	if _, err := promptAction(reader, "host"); !errors.Is(err, errMenuExit) {
		t.Fatalf("promptAction() at EOF error = %v, want %v", err, errMenuExit)
	}
}
