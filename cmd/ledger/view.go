package main

import (
	"fmt"
	"strconv"

	"github.com/danmuck/dps_ledger/src/chain"
	logs "github.com/danmuck/smplog"
	"github.com/pterm/pterm"
)

const shortIDLen = 12

// shortID trims long hex identities for display.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen] + "..."
}

func transactionCell(tx chain.Transaction) string {
	return fmt.Sprintf("%s -> %s: %.2f", shortID(tx.Sender), shortID(tx.Recipient), tx.Amount)
}

func printChain(blocks []chain.Block) {
	logs.Titlef("\nBlockchain (%d block(s)):\n", len(blocks))

	data := pterm.TableData{{"Depth", "Previous hash", "Nonce", "Transactions"}}
	for _, b := range blocks {
		prev := b.PreviousHash
		if prev == "" {
			prev = "(genesis)"
		} else {
			prev = shortID(prev)
		}

		if len(b.Transactions) == 0 {
			data = append(data, []string{strconv.FormatUint(b.Depth, 10), prev, strconv.FormatUint(b.Nonce, 10), "-"})
			continue
		}
		for i, tx := range b.Transactions {
			if i == 0 {
				data = append(data, []string{strconv.FormatUint(b.Depth, 10), prev, strconv.FormatUint(b.Nonce, 10), transactionCell(tx)})
				continue
			}
			data = append(data, []string{"", "", "", transactionCell(tx)})
		}
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		logs.Warnf("table render failed: %v", err)
		for _, b := range blocks {
			logs.Dataf("  %d  prev=%s  nonce=%d  txs=%d\n", b.Depth, shortID(b.PreviousHash), b.Nonce, len(b.Transactions))
		}
	}
}

func printPending(pending []chain.Transaction) {
	logs.Titlef("\nPending transactions (%d):\n", len(pending))
	if len(pending) == 0 {
		logs.StatusInfo("Queue is empty.")
		return
	}
	for i, tx := range pending {
		logs.MenuItem(i, transactionCell(tx), false)
	}
}

func printParticipants(l *chain.Ledger) {
	participants := l.Participants()
	logs.Titlef("\nParticipants (%d):\n", len(participants))
	for i, id := range participants {
		entry := logs.PadRight(shortIDLen+3, shortID(id)) + fmt.Sprintf("  %6.2f", l.Balance(id))
		logs.MenuItem(i, entry, id == l.HostingIdentity())
	}
}
