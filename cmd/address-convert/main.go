// Command address-convert preprocesses a newline-delimited address list
// into a flat binary file of 20-byte hash160 values, the input format
// predicate.BuildPrefixLookup expects. Splitting this out of the search
// binary keeps address-encoding concerns (spec.md §6's out-of-scope wire
// formats) off the hot path: the search binary loads already-decoded
// hash160 bytes instead of calling btcutil.DecodeAddress per target.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	inputFile  = "../addresses.txt"
	outputFile = "../address-hashes.bin"
)

// addressToHash160 converts a Bitcoin address to its Hash160 value.
func addressToHash160(address string) ([]byte, error) {
	if len(address) < 25 || len(address) > 90 {
		return nil, fmt.Errorf("invalid address length: %d", len(address))
	}

	addr, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams)
	if err != nil {
		if strings.Contains(err.Error(), "unsupported witness version") {
			return nil, fmt.Errorf("malformed witness address (invalid version): %s", address)
		}
		if strings.Contains(err.Error(), "unsupported witness program length") {
			return nil, fmt.Errorf("malformed witness address (invalid length): %s", address)
		}
		return nil, fmt.Errorf("failed to decode address %s: %v", address, err)
	}

	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return a.Hash160()[:], nil
	case *btcutil.AddressWitnessPubKeyHash:
		return a.Hash160()[:], nil
	case *btcutil.AddressScriptHash:
		return a.Hash160()[:], nil
	default:
		return nil, fmt.Errorf("unsupported address type for brute-force search: %T for address %s", addr, address)
	}
}

func main() {
	fmt.Println("Bitcoin address to hash160 converter")
	fmt.Printf("Input file: %s\n", inputFile)
	fmt.Printf("Output file: %s\n", outputFile)

	startTime := time.Now()

	inFile, err := os.Open(inputFile)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer inFile.Close()

	outFile, err := os.Create(outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer outFile.Close()

	scanner := bufio.NewScanner(inFile)
	var processedCount, errorCount, duplicateCount int64
	var p2pkhCount, p2wpkhCount, p2shCount int64

	seenHashes := make(map[string]bool)

	for scanner.Scan() {
		address := strings.TrimSpace(scanner.Text())
		if address == "" {
			continue
		}

		switch {
		case strings.HasPrefix(address, "1"):
			p2pkhCount++
		case strings.HasPrefix(address, "3"):
			p2shCount++
		case strings.HasPrefix(address, "bc1q") && len(address) == 42:
			p2wpkhCount++
		default:
			errorCount++
			continue
		}

		hash160, err := addressToHash160(address)
		if err != nil {
			log.Printf("skipping %s: %v", address, err)
			errorCount++
			continue
		}

		hashStr := string(hash160)
		if seenHashes[hashStr] {
			duplicateCount++
			continue
		}
		seenHashes[hashStr] = true

		if _, err := outFile.Write(hash160); err != nil {
			log.Fatalf("Failed to write hash to output file: %v", err)
		}
		processedCount++

		if processedCount%1_000_000 == 0 {
			elapsed := time.Since(startTime)
			fmt.Printf("processed %dM addresses (%.0f/sec)\n", processedCount/1_000_000, float64(processedCount)/elapsed.Seconds())
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("Error reading input file: %v", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("converted %d addresses (p2pkh=%d p2wpkh=%d p2sh=%d errors=%d duplicates=%d) in %v\n",
		processedCount, p2pkhCount, p2wpkhCount, p2shCount, errorCount, duplicateCount, elapsed)
	fmt.Printf("output: %d bytes (%.2f MB)\n", processedCount*20, float64(processedCount*20)/(1024*1024))
}
