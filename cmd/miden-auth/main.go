package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crStiv/miden-base/felt"
	"github.com/crStiv/miden-base/kernel"
	"github.com/crStiv/miden-base/node"
)

const usageCommands = "commands: version | keygen | verify-keystore | init-account | sign | authenticate | show"

type hostFlags struct {
	fs         *flag.FlagSet
	configPath *string
	cfg        node.Config
}

// newHostFlags registers the config overrides shared by every store-backed
// subcommand.
func newHostFlags(name string) *hostFlags {
	defaults := node.DefaultConfig()
	h := &hostFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError), cfg: defaults}
	h.configPath = h.fs.String("config", "", "JSON config file (flags override it)")
	h.fs.StringVar(&h.cfg.Network, "network", defaults.Network, "network name")
	h.fs.StringVar(&h.cfg.DataDir, "datadir", defaults.DataDir, "data directory")
	h.fs.StringVar(&h.cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	h.fs.StringVar(&h.cfg.Hasher, "hasher", defaults.Hasher, "hash compressor: poseidon|mimc")
	h.fs.StringVar(&h.cfg.StoreBackend, "backend", defaults.StoreBackend, "store backend: bbolt|leveldb")
	h.fs.StringVar(&h.cfg.NonceOrdering, "nonce-ordering", defaults.NonceOrdering, "pre_verify|post_verify")
	h.fs.StringVar(&h.cfg.AccountHRP, "hrp", defaults.AccountHRP, "bech32 prefix for account ids")
	return h
}

var hostFlagNames = map[string]func(dst *node.Config, src node.Config){
	"network":        func(d *node.Config, s node.Config) { d.Network = s.Network },
	"datadir":        func(d *node.Config, s node.Config) { d.DataDir = s.DataDir },
	"log-level":      func(d *node.Config, s node.Config) { d.LogLevel = s.LogLevel },
	"hasher":         func(d *node.Config, s node.Config) { d.Hasher = s.Hasher },
	"backend":        func(d *node.Config, s node.Config) { d.StoreBackend = s.StoreBackend },
	"nonce-ordering": func(d *node.Config, s node.Config) { d.NonceOrdering = s.NonceOrdering },
	"hrp":            func(d *node.Config, s node.Config) { d.AccountHRP = s.AccountHRP },
}

func (h *hostFlags) config() (node.Config, error) {
	if *h.configPath == "" {
		cfg := h.cfg
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
		return cfg, nil
	}
	cfg, err := node.LoadConfig(*h.configPath)
	if err != nil {
		return cfg, err
	}
	h.fs.Visit(func(f *flag.Flag) {
		if apply, ok := hostFlagNames[f.Name]; ok {
			apply(&cfg, h.cfg)
		}
	})
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}

func (h *hostFlags) open(stderr io.Writer) (*node.Host, error) {
	cfg, err := h.config()
	if err != nil {
		return nil, err
	}
	if err := node.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return node.OpenHost(cfg, node.NewLogger(cfg.LogLevel, stderr))
}

func parseWordFlag(name, v string) (felt.Word, error) {
	if v == "" {
		return felt.ZeroWord, nil
	}
	w, err := felt.ParseWordHex(v)
	if err != nil {
		return felt.Word{}, fmt.Errorf("--%s: %w", name, err)
	}
	return w, nil
}

func cmdInitAccount(argv []string, stdout, stderr io.Writer) error {
	hf := newHostFlags("init-account")
	idStr := hf.fs.String("id", "", "account id (hex or bech32)")
	ksPath := hf.fs.String("keystore", "", "keystore json whose public key guards the account")
	commitHex := hf.fs.String("commitment", "", "key commitment hex (alternative to --keystore)")
	if err := hf.fs.Parse(argv); err != nil {
		return err
	}
	if *idStr == "" || (*ksPath == "") == (*commitHex == "") {
		return fmt.Errorf("need --id and exactly one of --keystore or --commitment")
	}
	if *ksPath != "" {
		ks, err := readKeystore(*ksPath)
		if err != nil {
			return err
		}
		if _, err := ks.checkCommitment(); err != nil {
			return err
		}
		*commitHex = ks.CommitmentHex
	}
	commitment, err := felt.ParseWordHex(*commitHex)
	if err != nil {
		return fmt.Errorf("commitment: %w", err)
	}

	host, err := hf.open(stderr)
	if err != nil {
		return err
	}
	defer host.Close()
	id, err := kernel.ParseAccountID(*idStr, host.Config.AccountHRP)
	if err != nil {
		return err
	}
	if _, err := host.Executor.CreateAccount(id, commitment); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, id.String())
	return nil
}

func cmdSign(argv []string, stdout, stderr io.Writer) error {
	hf := newHostFlags("sign")
	idStr := hf.fs.String("id", "", "account id (hex or bech32)")
	ksPath := hf.fs.String("keystore", "", "keystore json")
	passEnv := hf.fs.String("passphrase-env", defaultPassphraseEnv, "environment variable holding the keystore passphrase")
	outHash := hf.fs.String("output-hash", "", "output notes hash (word hex)")
	inCommit := hf.fs.String("input-commitment", "", "input notes commitment (word hex)")
	out := hf.fs.String("out", "", "advice bundle output path")
	if err := hf.fs.Parse(argv); err != nil {
		return err
	}
	if *idStr == "" || *ksPath == "" || *out == "" {
		return fmt.Errorf("missing required flags: --id --keystore --out")
	}
	oh, err := parseWordFlag("output-hash", *outHash)
	if err != nil {
		return err
	}
	ic, err := parseWordFlag("input-commitment", *inCommit)
	if err != nil {
		return err
	}
	kp, err := unlockKeystore(*ksPath, *passEnv)
	if err != nil {
		return err
	}

	host, err := hf.open(stderr)
	if err != nil {
		return err
	}
	defer host.Close()
	id, err := kernel.ParseAccountID(*idStr, host.Config.AccountHRP)
	if err != nil {
		return err
	}
	st, ok, err := host.Executor.Account(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no account %s", id)
	}
	msg := kernel.ComposeMessage(host.Hasher, oh, ic, id, st.Nonce)
	wit, err := kp.Witness(msg)
	if err != nil {
		return err
	}
	var bundle node.AdviceBundle
	bundle.Add(kernel.SignatureAdviceKey(host.Hasher, kp.Commitment(), msg), wit)
	if err := node.WriteAdviceBundle(*out, &bundle); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, msg.Hex())
	return nil
}

type outcomeJSON struct {
	Authorized bool   `json:"authorized"`
	Account    string `json:"account"`
	Nonce      uint64 `json:"nonce"`
	Message    string `json:"message"`
	Phase      string `json:"phase"`
	Code       string `json:"code,omitempty"`
	Err        string `json:"err,omitempty"`
}

// cmdAuthenticate reports a rejection through the returned bool; err is for
// host failures.
func cmdAuthenticate(argv []string, stdout, stderr io.Writer) (bool, error) {
	hf := newHostFlags("authenticate")
	idStr := hf.fs.String("id", "", "account id (hex or bech32)")
	outHash := hf.fs.String("output-hash", "", "output notes hash (word hex)")
	inCommit := hf.fs.String("input-commitment", "", "input notes commitment (word hex)")
	advicePath := hf.fs.String("advice", "", "advice bundle path")
	if err := hf.fs.Parse(argv); err != nil {
		return false, err
	}
	if *idStr == "" {
		return false, fmt.Errorf("missing required flag: --id")
	}
	oh, err := parseWordFlag("output-hash", *outHash)
	if err != nil {
		return false, err
	}
	ic, err := parseWordFlag("input-commitment", *inCommit)
	if err != nil {
		return false, err
	}
	advice := kernel.NewAdviceMap()
	if *advicePath != "" {
		bundle, err := node.LoadAdviceBundle(*advicePath)
		if err != nil {
			return false, err
		}
		if advice, err = bundle.AdviceMap(); err != nil {
			return false, err
		}
	}

	host, err := hf.open(stderr)
	if err != nil {
		return false, err
	}
	defer host.Close()
	id, err := kernel.ParseAccountID(*idStr, host.Config.AccountHRP)
	if err != nil {
		return false, err
	}
	out, err := host.Executor.Authenticate(id, kernel.StaticCommitments{Output: oh, Input: ic}, advice)
	if err != nil {
		return false, err
	}
	resp := outcomeJSON{
		Authorized: out.Authorized(),
		Account:    id.String(),
		Nonce:      uint64(out.Nonce),
		Message:    out.Message.Hex(),
		Phase:      out.Phase.String(),
	}
	if !resp.Authorized {
		resp.Phase = out.FailedAt.String()
		resp.Code = string(out.Code())
		resp.Err = out.Reason.Error()
	}
	return resp.Authorized, printJSON(stdout, resp)
}

type accountJSON struct {
	ID      string            `json:"id"`
	Bech32  string            `json:"bech32"`
	Type    string            `json:"type"`
	Nonce   uint64            `json:"nonce"`
	Storage map[string]string `json:"storage"`
}

func cmdShow(argv []string, stdout, stderr io.Writer) error {
	hf := newHostFlags("show")
	idStr := hf.fs.String("id", "", "account id (hex or bech32)")
	if err := hf.fs.Parse(argv); err != nil {
		return err
	}
	if *idStr == "" {
		return fmt.Errorf("missing required flag: --id")
	}
	host, err := hf.open(stderr)
	if err != nil {
		return err
	}
	defer host.Close()
	id, err := kernel.ParseAccountID(*idStr, host.Config.AccountHRP)
	if err != nil {
		return err
	}
	st, ok, err := host.Executor.Account(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no account %s", id)
	}
	b32, err := id.Bech32(host.Config.AccountHRP)
	if err != nil {
		return err
	}
	resp := accountJSON{ID: id.String(), Bech32: b32, Type: id.Type().String(), Nonce: uint64(st.Nonce), Storage: map[string]string{}}
	for slot, w := range st.Storage {
		resp.Storage[fmt.Sprintf("%d", slot)] = w.Hex()
	}
	return printJSON(stdout, resp)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: miden-auth <command> [flags]")
	_, _ = fmt.Fprintln(w, usageCommands)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}
	command, argv := args[0], args[1:]
	var err error
	switch command {
	case "version":
		_, _ = fmt.Fprintln(stdout, "miden-auth (go): v0.1")
		return 0
	case "keygen":
		err = cmdKeygen(argv, stdout)
	case "verify-keystore":
		err = cmdVerifyKeystore(argv, stdout)
	case "init-account":
		err = cmdInitAccount(argv, stdout, stderr)
	case "sign":
		err = cmdSign(argv, stdout, stderr)
	case "show":
		err = cmdShow(argv, stdout, stderr)
	case "authenticate":
		ok, aerr := cmdAuthenticate(argv, stdout, stderr)
		if aerr != nil {
			_, _ = fmt.Fprintln(stderr, "authenticate error:", aerr)
			return 1
		}
		if !ok {
			return 3
		}
		return 0
	default:
		_, _ = fmt.Fprintln(stderr, "unknown command")
		printUsage(stderr)
		return 2
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s error: %v\n", command, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
