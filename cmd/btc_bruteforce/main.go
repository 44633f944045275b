// Command btc_bruteforce is the CLI collaborator of spec.md §6: it
// parses command inputs with spf13/cobra and spf13/pflag, builds a
// config.Config, wires the configured predicate set, and drives
// orchestrator.Orchestrator to completion.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"btc_bruteforce/internal/config"
	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/field"
	"btc_bruteforce/internal/orchestrator"
	"btc_bruteforce/internal/predicate"
	"btc_bruteforce/internal/reconstruct"
)

func main() {
	log := logrus.New()
	root := buildRootCmd(log)
	if err := root.Execute(); err != nil {
		log.WithError(err).Error("fatal")
		os.Exit(1)
	}
}

func buildRootCmd(log *logrus.Logger) *cobra.Command {
	cfg := &config.Config{}
	var maskValueHex, maskBitsHex, startPubKeyHex, seedHex, hashFile string

	cmd := &cobra.Command{
		Use:   "btc_bruteforce",
		Short: "Parallel brute-force search over secp256k1 candidate scalars",
	}

	search := &cobra.Command{
		Use:   "search",
		Short: "Run a search against the configured targets",
		RunE: func(_ *cobra.Command, _ []string) error {
			if seedHex != "" {
				b, err := hex.DecodeString(seedHex)
				if err != nil {
					return errors.Wrap(err, "decoding --seed")
				}
				cfg.Seed = b
			}
			if startPubKeyHex != "" {
				b, err := hex.DecodeString(startPubKeyHex)
				if err != nil {
					return errors.Wrap(err, "decoding --start-pubkey")
				}
				cfg.StartPubKey = b
			}
			cfg.HashFile = hashFile
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSearch(log, cfg, maskValueHex, maskBitsHex)
		},
	}

	flags := search.Flags()
	flags.StringArrayVar(&cfg.Targets, "target", nil, "target pattern (address, repeatable)")
	flags.StringVar(&hashFile, "hash-file", "", "path to a binary file of concatenated 20-byte hash160 values (see cmd/address-convert)")
	flags.StringVar((*string)(&cfg.Mode), "mode", string(config.ModeCompressed), "compressed|uncompressed|both|mask|sig|taproot|txid|pattern")
	flags.IntVar(&cfg.CPUThreads, "cpu-threads", 1, "number of CPU worker threads")
	flags.IntVar(&cfg.GPUThreads, "gpu-threads", 0, "number of GPU worker threads")
	flags.StringVar(&seedHex, "seed", "", "hex-encoded seed scalar")
	flags.StringVar(&startPubKeyHex, "start-pubkey", "", "hex-encoded SEC1 public key for offset search")
	flags.Uint64Var(&cfg.RekeyMkeys, "rekey-mkeys", 0, "rekey threshold in millions of keys (0 disables)")
	flags.IntVar(&cfg.MaxFound, "max-found", 0, "stop after this many matches (with --stop-when-found)")
	flags.BoolVar(&cfg.StopWhenFound, "stop-when-found", false, "stop once --max-found matches are reported")
	flags.StringVar(&cfg.Output, "output", "", "result file path (defaults to stdout)")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "optional host:port to expose Prometheus metrics")
	flags.BoolVar(&cfg.CaseInsensitive, "case-insensitive", false, "case-insensitive pattern matching")
	flags.StringVar(&maskValueHex, "mask-value", "", "hex-encoded 32-byte mask target value")
	flags.StringVar(&maskBitsHex, "mask-bits", "", "hex-encoded 32-byte mask")
	flags.StringArrayVar(&cfg.Patterns, "pattern", nil, "glob pattern over the P2PKH address text (repeatable)")
	flags.StringVar(&cfg.TxidTemplateHex, "txid-template", "", "hex-encoded transaction template with a 20-byte hash160 hole")
	flags.IntVar(&cfg.TxidHoleOffset, "txid-hole-offset", 0, "byte offset of the hash160 hole in --txid-template")
	flags.StringArrayVar(&cfg.TxidPrefixes, "txid-prefix", nil, "hex-encoded little-endian txid prefix (repeatable)")

	cmd.AddCommand(search)
	return cmd
}

func runSearch(log *logrus.Logger, cfg *config.Config, maskValueHex, maskBitsHex string) error {
	table := curve.BuildTable()

	var startPubKey *curve.Point
	if len(cfg.StartPubKey) != 0 {
		p, err := parseSEC1(cfg.StartPubKey)
		if err != nil {
			return errors.Wrap(err, "parsing --start-pubkey")
		}
		startPubKey = &p
	}

	out := os.Stdout
	if cfg.Output != "" {
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.Wrap(err, "opening --output")
		}
		defer f.Close()
		out = f
	}

	rc := reconstruct.New(startPubKey, log)
	sink := orchestrator.NewOutputSink(out, rc, &chaincfg.MainNetParams)

	evaluators, err := buildEvaluators(cfg, maskValueHex, maskBitsHex, sink)
	if err != nil {
		return err
	}
	if cfg.Mode == config.ModeTxid {
		if tp, ok := evaluators[0].(*predicate.TxidPredicate); ok {
			rc.TxidTemplate = &tp.Template
		}
	}

	randScalar := func() field.Scalar {
		var b [32]byte
		if _, err := rand.Read(b[:]); err != nil {
			log.WithError(err).Fatal("reading randomness for rekey/seed")
		}
		return field.NewScalarFromBytes32(b[:])
	}
	if len(cfg.Seed) != 0 {
		seedBytes := cfg.Seed
		first := true
		original := randScalar
		randScalar = func() field.Scalar {
			if first {
				first = false
				return field.NewScalarFromBytes32(seedBytes)
			}
			return original()
		}
	}

	orch := orchestrator.New(cfg, table, evaluators, sink, log, randScalar, nil)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(orch.Metrics().Registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.WithError(err).Warn("metrics listener stopped")
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.WithFields(logrus.Fields{
		"mode":        cfg.Mode,
		"cpu_threads": cfg.CPUThreads,
		"gpu_threads": cfg.GPUThreads,
	}).Info("search starting")

	orch.Run(ctx)

	log.WithField("hits", sink.Hits).Info("search finished")
	if cfg.StopWhenFound && sink.Hits < cfg.MaxFound {
		return errors.New("search interrupted before all targets were hit")
	}
	return nil
}

func parseSEC1(b []byte) (curve.Point, error) {
	switch len(b) {
	case 33:
		x, err := field.NewFromBytes32(b[1:])
		if err != nil {
			return curve.Point{}, err
		}
		// y^2 = x^3 + 7; recovering y from x and the parity byte needs a
		// modular square root, which callers off the hot path use math/big for.
		return recoverFromCompressed(x, b[0])
	case 65:
		x, err := field.NewFromBytes32(b[1:33])
		if err != nil {
			return curve.Point{}, err
		}
		y, err := field.NewFromBytes32(b[33:65])
		if err != nil {
			return curve.Point{}, err
		}
		return curve.Point{X: x, Y: y}, nil
	default:
		return curve.Point{}, errors.New("invalid SEC1 public key length")
	}
}

func recoverFromCompressed(x field.Element, prefix byte) (curve.Point, error) {
	rhs := x.Square().Mul(x).Add(curve.B)
	y := sqrtMod(rhs)
	wantOdd := prefix == 0x03
	if (y.Big().Bit(0) == 1) != wantOdd {
		y = y.Neg()
	}
	return curve.Point{X: x, Y: y}, nil
}

func sqrtMod(a field.Element) field.Element {
	// p mod 4 == 3 for secp256k1's field, so sqrt(a) = a^((p+1)/4) mod p.
	exp := new(big.Int).Add(field.P, big.NewInt(1))
	exp.Rsh(exp, 2)
	return field.NewFromBig(new(big.Int).Exp(a.Big(), exp, field.P))
}

func buildEvaluators(cfg *config.Config, maskValueHex, maskBitsHex string, sink predicate.Sink) ([]predicate.Evaluator, error) {
	switch cfg.Mode {
	case config.ModeMask, config.ModeSig, config.ModeTaproot:
		target, err := parseMaskTarget(maskValueHex, maskBitsHex)
		if err != nil {
			return nil, err
		}
		switch cfg.Mode {
		case config.ModeMask:
			return []predicate.Evaluator{&predicate.MaskPredicate{Targets: []predicate.MaskTarget{target}, Sink: sink}}, nil
		case config.ModeSig:
			return []predicate.Evaluator{&predicate.SigRPredicate{Targets: []predicate.MaskTarget{target}, Sink: sink}}, nil
		default:
			return []predicate.Evaluator{&predicate.TaprootPredicate{Targets: []predicate.MaskTarget{target}, Sink: sink}}, nil
		}
	case config.ModePattern:
		encode := func(h160 [20]byte) (string, error) {
			a, err := btcutil.NewAddressPubKeyHash(h160[:], &chaincfg.MainNetParams)
			if err != nil {
				return "", err
			}
			return a.EncodeAddress(), nil
		}
		return []predicate.Evaluator{&predicate.PatternPredicate{
			Patterns:        cfg.Patterns,
			CaseInsensitive: cfg.CaseInsensitive,
			Encode:          encode,
			Sink:            sink,
		}}, nil
	case config.ModeTxid:
		tmplBytes, err := hex.DecodeString(cfg.TxidTemplateHex)
		if err != nil {
			return nil, errors.Wrap(err, "decoding --txid-template")
		}
		prefixes := make([][]byte, 0, len(cfg.TxidPrefixes))
		for _, ph := range cfg.TxidPrefixes {
			pb, err := hex.DecodeString(ph)
			if err != nil {
				return nil, errors.Wrap(err, "decoding --txid-prefix")
			}
			prefixes = append(prefixes, pb)
		}
		return []predicate.Evaluator{&predicate.TxidPredicate{
			Template: predicate.TxidTemplate{Bytes: tmplBytes, HoleStart: cfg.TxidHoleOffset},
			Prefixes: prefixes,
			Sink:     sink,
		}}, nil
	default:
		var hashes [][20]byte
		var err error
		if cfg.HashFile != "" {
			hashes, err = loadHashFile(cfg.HashFile)
		} else {
			hashes, err = addressesToHash160(cfg.Targets)
		}
		if err != nil {
			return nil, err
		}
		table := predicate.BuildPrefixLookup(hashes)
		return []predicate.Evaluator{&predicate.PrefixLookupPredicate{Table: table, Sink: sink}}, nil
	}
}

// loadHashFile reads a flat binary file of concatenated 20-byte hash160
// values, the format cmd/address-convert produces.
func loadHashFile(path string) ([][20]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading --hash-file")
	}
	if len(data)%20 != 0 {
		return nil, errors.Newf("--hash-file length %d is not a multiple of 20", len(data))
	}
	out := make([][20]byte, len(data)/20)
	for i := range out {
		copy(out[i][:], data[i*20:(i+1)*20])
	}
	return out, nil
}

func parseMaskTarget(valueHex, bitsHex string) (predicate.MaskTarget, error) {
	value, err := hex.DecodeString(valueHex)
	if err != nil || len(value) != 32 {
		return predicate.MaskTarget{}, errors.New("--mask-value must be 32 hex-encoded bytes")
	}
	bits, err := hex.DecodeString(bitsHex)
	if err != nil || len(bits) != 32 {
		return predicate.MaskTarget{}, errors.New("--mask-bits must be 32 hex-encoded bytes")
	}
	var t predicate.MaskTarget
	for i := 0; i < 4; i++ {
		t.Value[i] = beUint64(value[24-8*i : 32-8*i])
		t.Mask[i] = beUint64(bits[24-8*i : 32-8*i])
	}
	return t, nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func addressesToHash160(targets []string) ([][20]byte, error) {
	out := make([][20]byte, 0, len(targets))
	for _, t := range targets {
		addr, err := btcutil.DecodeAddress(t, &chaincfg.MainNetParams)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding target %q", t)
		}
		switch a := addr.(type) {
		case *btcutil.AddressPubKeyHash:
			out = append(out, *a.Hash160())
		case *btcutil.AddressWitnessPubKeyHash:
			out = append(out, *a.Hash160())
		case *btcutil.AddressScriptHash:
			out = append(out, *a.Hash160())
		default:
			return nil, errors.Newf("unsupported address type for target %q", t)
		}
	}
	return out, nil
}
