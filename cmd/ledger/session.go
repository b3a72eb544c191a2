package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/danmuck/dps_ledger/src/chain"
	"github.com/danmuck/dps_ledger/src/ledger_store"
	"github.com/danmuck/dps_ledger/src/wallet"
	logs "github.com/danmuck/smplog"
	"github.com/pterm/pterm"
)

var errChainInvalid = errors.New("invalid blockchain")
var errNoWallet = errors.New("no wallet loaded: create or load one first")

// session ties the ledger to the wallet whose identity hosts it. Swapping
// the wallet rebuilds the ledger over the same store.
type session struct {
	cfg    RuntimeConfig
	store  *ledger_store.FileStore
	wallet *wallet.Wallet
	ledger *chain.Ledger
}

func newSession(cfg RuntimeConfig) (*session, error) {
	store, err := ledger_store.InitFileStoreWithConfig(cfg.Store)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, store: store}

	w, err := wallet.Load(cfg.KeyPath)
	switch {
	case err == nil:
		s.wallet = w
		logs.Infof("wallet loaded from %s", cfg.KeyPath)
	case errors.Is(err, os.ErrNotExist):
		logs.Debugf("no wallet at %s", cfg.KeyPath)
	default:
		logs.Warnf("could not load wallet %s: %v", cfg.KeyPath, err)
	}

	s.openLedger()
	return s, nil
}

func (s *session) identity() string {
	if id := s.wallet.Identity(); id != "" {
		return id
	}
	return s.cfg.Identity
}

func (s *session) openLedger() {
	s.ledger = chain.NewLedger(chain.Config{
		HostingIdentity: s.identity(),
		Difficulty:      s.cfg.Difficulty,
	}, wallet.Verifier{}, s.store)
}

func (s *session) setWallet(w *wallet.Wallet) {
	s.wallet = w
	s.openLedger()
}

// run executes one action, then re-checks the chain and reports the hosting
// balance. errChainInvalid means the caller must stop.
func (s *session) run(action MenuAction, reader *bufio.Reader) error {
	if err := s.execute(action, reader); err != nil {
		if errors.Is(err, errMenuBack) {
			logs.Println("Action cancelled.")
		} else {
			logs.StatusWarn(err.Error())
		}
	}
	return s.afterAction()
}

func (s *session) afterAction() error {
	if err := s.ledger.VerifyChain(); err != nil {
		printChain(s.ledger.Chain())
		logs.Errorf(err, "Invalid blockchain!")
		return fmt.Errorf("%w: %v", errChainInvalid, err)
	}
	logs.Printf("Balance of %s: %6.2f\n", shortID(s.ledger.HostingIdentity()), s.ledger.HostingBalance())
	return nil
}

func (s *session) execute(action MenuAction, reader *bufio.Reader) error {
	switch action {
	case ActionSubmit:
		return s.submit(reader)
	case ActionMine:
		return s.mine()
	case ActionChain:
		printChain(s.ledger.Chain())
	case ActionPending:
		printPending(s.ledger.Pending())
	case ActionVerify:
		if s.ledger.VerifyPending() {
			pterm.Success.Println("All transactions valid")
		} else {
			pterm.Warning.Println("There are invalid transactions...")
		}
	case ActionBalance:
		return s.balance(reader)
	case ActionParticipants:
		printParticipants(s.ledger)
	case ActionWalletNew:
		s.setWallet(wallet.New())
		logs.DataKV("identity", s.wallet.Identity())
		logs.KeyHint("wallet-save", "write the new keys to "+s.cfg.KeyPath)
	case ActionWalletLoad:
		w, err := wallet.Load(s.cfg.KeyPath)
		if err != nil {
			return err
		}
		s.setWallet(w)
		logs.DataKV("identity", w.Identity())
	case ActionWalletSave:
		if s.wallet == nil {
			return errNoWallet
		}
		if err := s.wallet.Save(s.cfg.KeyPath); err != nil {
			return err
		}
		logs.Printf("Saved keys to %s\n", s.cfg.KeyPath)
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
	return nil
}

func (s *session) submit(reader *bufio.Reader) error {
	if s.wallet == nil {
		return errNoWallet
	}

	recipient, amount := s.cfg.Recipient, s.cfg.Amount
	if !s.cfg.ActionProvided || recipient == "" || !s.cfg.AmountProvided {
		var err error
		recipient, err = promptLine(reader, "Enter the recipient of the transaction: ")
		if err != nil {
			return err
		}
		raw, err := promptLine(reader, "Your transaction amount please: ")
		if err != nil {
			return err
		}
		amount, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", raw, err)
		}
	}

	sender := s.wallet.Identity()
	signature, err := s.wallet.Sign(sender, recipient, amount)
	if err != nil {
		return err
	}
	if err := s.ledger.SubmitTransaction(sender, recipient, signature, amount); err != nil {
		pterm.Error.Println("Transaction failed ...")
		return err
	}
	pterm.Success.Println("Transaction added!")
	return nil
}

func (s *session) mine() error {
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining block %d at difficulty %d ...",
		s.ledger.LastBlock().Depth+1, s.ledger.Difficulty()))
	block, err := s.ledger.MineBlock()
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success(fmt.Sprintf("Mined block %d with nonce %d", block.Depth, block.Nonce))
	return nil
}

func (s *session) balance(reader *bufio.Reader) error {
	id := s.cfg.Recipient
	if !s.cfg.ActionProvided {
		raw, err := promptLine(reader, "Identity (default: hosting): ")
		if err != nil {
			return err
		}
		id = raw
	}
	if id == "" {
		id = s.ledger.HostingIdentity()
	}
	logs.DataKV(shortID(id), fmt.Sprintf("%6.2f", s.ledger.Balance(id)))
	return nil
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	logs.Promptf("%s", prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errMenuBack
	}
	return strings.TrimSpace(line), nil
}
