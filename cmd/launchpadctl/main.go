package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"launchpad/config"
	"launchpad/core/state"
	"launchpad/native/sale"
	"launchpad/storage"
)

const (
	initCommand   = "init"
	statusCommand = "status"
	rootCommand   = "merkle-root"
	proofCommand  = "merkle-proof"

	defaultDataDir  = "./launchpad-data"
	defaultCampaign = "./campaign.toml"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case initCommand:
		err = runInit(os.Args[2:])
	case statusCommand:
		err = runStatus(os.Args[2:])
	case rootCommand:
		err = runMerkleRoot(os.Args[2:])
	case proofCommand:
		err = runMerkleProof(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet(initCommand, flag.ExitOnError)
	campaignPath := fs.String("campaign", defaultCampaign, "Path to the campaign TOML file")
	dataDir := fs.String("datadir", defaultDataDir, "Directory for the campaign database")
	vaultFunding := fs.Uint64("fund-vault", 0, "Sale-asset amount to credit the campaign vault")
	fs.Parse(args)

	campaign, err := config.Load(*campaignPath)
	if err != nil {
		return fmt.Errorf("load campaign: %w", err)
	}
	cfg, err := campaign.SaleConfig()
	if err != nil {
		return err
	}
	admin, err := campaign.AdminAddress()
	if err != nil {
		return err
	}

	db, err := storage.NewLevelDB(*dataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	mgr := state.NewManager(db)
	engine := sale.NewEngine()
	engine.SetState(mgr)
	engine.SetLedger(mgr)

	saleState, err := engine.Initialize(admin, campaign.SaleAsset, campaign.PayAsset, cfg)
	if err != nil {
		return err
	}
	if *vaultFunding > 0 {
		if err := mgr.Mint(saleState.SaleVault, saleState.SaleAsset, *vaultFunding); err != nil {
			return fmt.Errorf("fund vault: %w", err)
		}
	}

	fmt.Printf("Initialized campaign %s\n", campaign.SaleAsset)
	fmt.Printf("  sale id: %x\n", saleState.ID)
	fmt.Printf("  vault:   %x\n", saleState.SaleVault)
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet(statusCommand, flag.ExitOnError)
	asset := fs.String("asset", "", "Sale asset symbol of the campaign")
	dataDir := fs.String("datadir", defaultDataDir, "Directory for the campaign database")
	fs.Parse(args)

	symbol, err := sale.NormalizeAsset(*asset)
	if err != nil {
		return err
	}
	db, err := storage.NewLevelDB(*dataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	mgr := state.NewManager(db)
	saleState, ok := mgr.SaleGet(sale.DeriveSaleID(symbol))
	if !ok {
		return fmt.Errorf("no campaign found for %s", symbol)
	}

	fmt.Printf("Campaign %s (%s)\n", saleState.SaleAsset, saleState.PayAsset)
	fmt.Printf("  schedule:   %d .. %d\n", saleState.StartTs, saleState.EndTs)
	fmt.Printf("  caps:       soft %d / hard %d\n", saleState.SoftCap, saleState.HardCap)
	fmt.Printf("  collected:  %d\n", saleState.Collected)
	fmt.Printf("  allocated:  %d\n", saleState.TotalAllocated)
	fmt.Printf("  claimed:    %d\n", saleState.TotalClaimed)
	fmt.Printf("  refunded:   %d\n", saleState.TotalRefunded)
	fmt.Printf("  withdrawn:  %d\n", saleState.FundsWithdrawn)
	fmt.Printf("  paused:     %v\n", saleState.IsPaused)
	return nil
}

func runMerkleRoot(args []string) error {
	fs := flag.NewFlagSet(rootCommand, flag.ExitOnError)
	listPath := fs.String("addresses", "", "File with one hex participant address per line")
	fs.Parse(args)

	leaves, _, err := loadLeaves(*listPath)
	if err != nil {
		return err
	}
	root := sale.BuildAllowlistRoot(leaves)
	fmt.Printf("%x\n", root)
	return nil
}

func runMerkleProof(args []string) error {
	fs := flag.NewFlagSet(proofCommand, flag.ExitOnError)
	listPath := fs.String("addresses", "", "File with one hex participant address per line")
	target := fs.String("address", "", "Participant address to prove membership for")
	fs.Parse(args)

	leaves, addresses, err := loadLeaves(*listPath)
	if err != nil {
		return err
	}
	wanted, err := parseAddress(*target)
	if err != nil {
		return fmt.Errorf("target address: %w", err)
	}
	index := -1
	for i, addr := range addresses {
		if addr == wanted {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("address %x is not in the participant list", wanted)
	}
	for _, node := range sale.BuildAllowlistProof(leaves, index) {
		fmt.Printf("%x\n", node)
	}
	return nil
}

func loadLeaves(path string) ([][32]byte, [][20]byte, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("missing -addresses file")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var (
		leaves    [][32]byte
		addresses [][20]byte
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addr, err := parseAddress(line)
		if err != nil {
			return nil, nil, fmt.Errorf("address %q: %w", line, err)
		}
		addresses = append(addresses, addr)
		leaves = append(leaves, sale.AllowlistLeaf(addr))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return leaves, addresses, nil
}

func parseAddress(s string) ([20]byte, error) {
	var addr [20]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return addr, err
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("expected %d bytes, got %d", len(addr), len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

func usage() {
	fmt.Println("launchpadctl <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s           Create a campaign from a TOML definition\n", initCommand)
	fmt.Printf("  %s         Print the aggregate state of a campaign\n", statusCommand)
	fmt.Printf("  %s    Compute the allowlist root for a participant list\n", rootCommand)
	fmt.Printf("  %s   Compute the membership proof for one participant\n", proofCommand)
}
