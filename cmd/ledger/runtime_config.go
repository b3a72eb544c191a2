package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/dps_ledger/src/chain"
	"github.com/danmuck/dps_ledger/src/ledger_store"
	"github.com/danmuck/dps_ledger/src/wallet"
)

type MenuAction string

const (
	ActionSubmit       MenuAction = "submit"
	ActionMine         MenuAction = "mine"
	ActionChain        MenuAction = "chain"
	ActionPending      MenuAction = "pending"
	ActionVerify       MenuAction = "verify"
	ActionBalance      MenuAction = "balance"
	ActionParticipants MenuAction = "participants"
	ActionWalletNew    MenuAction = "wallet-new"
	ActionWalletLoad   MenuAction = "wallet-load"
	ActionWalletSave   MenuAction = "wallet-save"
)

const DefaultConfigPath = "./ledger.config.toml"

type RuntimeConfig struct {
	ConfigPath     string
	Identity       string
	Difficulty     int
	KeyPath        string
	Action         MenuAction
	ActionProvided bool
	Recipient      string
	Amount         float64
	AmountProvided bool
	Store          ledger_store.LedgerStoreConfig
}

// fileConfig is the layout of ledger.config.toml. Zero values leave the
// defaults untouched.
type fileConfig struct {
	Identity   string `toml:"identity"`
	Difficulty int    `toml:"difficulty"`
	StorageDir string `toml:"storage_dir"`
	LedgerFile string `toml:"ledger_file"`
	KeyPath    string `toml:"key_path"`
	Verbose    bool   `toml:"verbose"`
}

func defaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ConfigPath: DefaultConfigPath,
		Identity:   "",
		Difficulty: chain.DefaultDifficulty,
		KeyPath:    filepath.Join("./local", wallet.DefaultKeyFile),
		Action:     ActionChain,
		Store:      ledger_store.DefaultConfig("./local"),
	}
}

var defaultRuntimeConfig = defaultConfig()

const CONFIG_FLAG = "--config"
const IDENTITY_FLAG = "--identity"
const DIFFICULTY_FLAG = "--difficulty"
const STORAGE_FLAG = "--storage"
const KEY_PATH_FLAG = "--key-path"
const TO_FLAG = "--to"
const AMOUNT_FLAG = "--amount"
const VERBOSE_FLAG = "--verbose"

var actionAliases = map[string]MenuAction{
	string(ActionSubmit):       ActionSubmit,
	"tx":                       ActionSubmit,
	string(ActionMine):         ActionMine,
	string(ActionChain):        ActionChain,
	"blocks":                   ActionChain,
	string(ActionPending):      ActionPending,
	string(ActionVerify):       ActionVerify,
	string(ActionBalance):      ActionBalance,
	string(ActionParticipants): ActionParticipants,
	string(ActionWalletNew):    ActionWalletNew,
	"wallet_new":               ActionWalletNew,
	string(ActionWalletLoad):   ActionWalletLoad,
	"wallet_load":              ActionWalletLoad,
	string(ActionWalletSave):   ActionWalletSave,
	"wallet_save":              ActionWalletSave,
}

// cutValue matches "--name value" and "--name=value". It advances i when the
// value is the next argument.
func cutValue(args []string, i *int, name string) (string, bool, error) {
	arg := args[*i]
	if arg == name {
		if *i+1 >= len(args) {
			return "", true, fmt.Errorf("missing value after %q", name)
		}
		*i++
		return strings.TrimSpace(args[*i]), true, nil
	}
	if after, ok := strings.CutPrefix(arg, name+"="); ok {
		return strings.TrimSpace(after), true, nil
	}
	return "", false, nil
}

// configPathFromArgs finds --config before the rest of the flags are applied
// so that flags override the file.
func configPathFromArgs(args []string) (string, error) {
	path := DefaultConfigPath
	for i := 0; i < len(args); i++ {
		value, ok, err := cutValue(args, &i, CONFIG_FLAG)
		if err != nil {
			return "", err
		}
		if ok {
			path = value
		}
	}
	return path, nil
}

// loadFileConfig overlays a TOML config file onto cfg. A missing file is not
// an error unless it was named explicitly.
func loadFileConfig(path string, cfg RuntimeConfig, required bool) (RuntimeConfig, error) {
	cfg.ConfigPath = path

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if fc.Identity != "" {
		cfg.Identity = fc.Identity
	}
	if fc.Difficulty < 0 {
		return cfg, fmt.Errorf("config %s: difficulty must be >= 0", path)
	}
	if fc.Difficulty > 0 {
		cfg.Difficulty = fc.Difficulty
	}
	if fc.StorageDir != "" {
		cfg.Store.StorageDir = fc.StorageDir
	}
	if fc.LedgerFile != "" {
		cfg.Store.FileName = fc.LedgerFile
	}
	if fc.KeyPath != "" {
		cfg.KeyPath = fc.KeyPath
	}
	if fc.Verbose {
		cfg.Store.Verbose = true
	}
	return cfg, nil
}

func loadRuntimeConfig(args []string, cfg RuntimeConfig) (RuntimeConfig, error) {
	path, err := configPathFromArgs(args)
	if err != nil {
		return cfg, err
	}
	cfg, err = loadFileConfig(path, cfg, path != DefaultConfigPath)
	if err != nil {
		return cfg, err
	}
	return parseCLI(args, cfg)
}

func parseCLI(args []string, cfg RuntimeConfig) (RuntimeConfig, error) {
	runtimeCfg := cfg

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == VERBOSE_FLAG {
			runtimeCfg.Store.Verbose = true
			continue
		}

		if _, ok, err := cutValue(args, &i, CONFIG_FLAG); ok || err != nil {
			if err != nil {
				return runtimeCfg, err
			}
			continue
		}

		if value, ok, err := cutValue(args, &i, IDENTITY_FLAG); ok || err != nil {
			if err != nil {
				return runtimeCfg, err
			}
			runtimeCfg.Identity = value
			continue
		}

		if value, ok, err := cutValue(args, &i, DIFFICULTY_FLAG); ok || err != nil {
			if err != nil {
				return runtimeCfg, err
			}
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return runtimeCfg, fmt.Errorf("invalid %s value %q: %w", DIFFICULTY_FLAG, value, err)
			}
			if parsed < 0 {
				return runtimeCfg, fmt.Errorf("%s must be >= 0", DIFFICULTY_FLAG)
			}
			runtimeCfg.Difficulty = parsed
			continue
		}

		if value, ok, err := cutValue(args, &i, STORAGE_FLAG); ok || err != nil {
			if err != nil {
				return runtimeCfg, err
			}
			runtimeCfg.Store.StorageDir = value
			continue
		}

		if value, ok, err := cutValue(args, &i, KEY_PATH_FLAG); ok || err != nil {
			if err != nil {
				return runtimeCfg, err
			}
			runtimeCfg.KeyPath = value
			continue
		}

		if value, ok, err := cutValue(args, &i, TO_FLAG); ok || err != nil {
			if err != nil {
				return runtimeCfg, err
			}
			runtimeCfg.Recipient = value
			continue
		}

		if value, ok, err := cutValue(args, &i, AMOUNT_FLAG); ok || err != nil {
			if err != nil {
				return runtimeCfg, err
			}
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return runtimeCfg, fmt.Errorf("invalid %s value %q: %w", AMOUNT_FLAG, value, err)
			}
			if !chain.ValidAmount(parsed) {
				return runtimeCfg, fmt.Errorf("%s must be a finite number >= 0, got %q", AMOUNT_FLAG, value)
			}
			runtimeCfg.Amount = parsed
			runtimeCfg.AmountProvided = true
			continue
		}

		action, ok := actionAliases[strings.ToLower(strings.TrimSpace(arg))]
		if !ok {
			return runtimeCfg, fmt.Errorf("unsupported argument %q", arg)
		}
		if runtimeCfg.ActionProvided {
			return runtimeCfg, fmt.Errorf("multiple actions provided: %q", arg)
		}
		runtimeCfg.Action = action
		runtimeCfg.ActionProvided = true
	}

	if runtimeCfg.Action == ActionSubmit && runtimeCfg.ActionProvided {
		if runtimeCfg.Recipient == "" || !runtimeCfg.AmountProvided {
			return runtimeCfg, fmt.Errorf("%s requires %s and %s", ActionSubmit, TO_FLAG, AMOUNT_FLAG)
		}
	}

	return runtimeCfg, nil
}

func printUsage(cfg RuntimeConfig) {
	fmt.Printf("Usage: go run ./cmd/ledger [submit|mine|chain|pending|verify|balance|participants|wallet-new|wallet-load|wallet-save] [%s PATH] [%s ID] [%s N] [%s DIR] [%s PATH] [%s ID %s X] [%s]\n",
		CONFIG_FLAG,
		IDENTITY_FLAG,
		DIFFICULTY_FLAG,
		STORAGE_FLAG,
		KEY_PATH_FLAG,
		TO_FLAG,
		AMOUNT_FLAG,
		VERBOSE_FLAG,
	)
	fmt.Printf("No action starts the interactive menu; piped input defaults to %q.\n", cfg.Action)
	fmt.Printf("Config is read from %s when present; flags override it.\n", cfg.ConfigPath)
	fmt.Printf("Default difficulty is %d leading zero hex digits.\n", cfg.Difficulty)
	fmt.Printf("Ledger state is written to %s/%s.\n", cfg.Store.StorageDir, cfg.Store.FileName)
	fmt.Printf("Wallet keys are read from and saved to %s.\n", cfg.KeyPath)
	fmt.Println("Actions: submit (sign and queue a transfer), mine (seal pending into a block), chain (print blocks), pending (print queue), verify (check pending signatures), balance (hosting identity, or --to ID), participants (known identities), wallet-new, wallet-load, wallet-save.")
}
