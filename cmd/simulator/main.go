package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:9999"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "populate":
		populateCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Auction Simulator - Development tool for testing live auctions

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Create a host, an auction, captains with teams, and a player pool
  populate  Add more players to an existing draft-stage auction
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:9999)

EXAMPLES:
  # Create a 4-team auction with 12 players, still in draft stage
  simulator full

  # Create and immediately open the live auction
  simulator full --start

  # Create, start, and auto-bid through the whole queue
  simulator full --start --autobid

  # Add 5 more players to an existing auction (host token required)
  simulator populate --auction=<id> --token=<host-token> --count=5`)
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	teams := fs.Int("teams", 4, "Number of captain teams to create")
	players := fs.Int("players", 12, "Number of players in the pool")
	budget := fs.Int64("budget", 1000, "Token budget per captain")
	minBid := fs.Int64("min-bid", 10, "Minimum opening bid")
	timer := fs.Int("timer", 30, "Countdown seconds per player")
	start := fs.Bool("start", false, "Open the live auction after seeding")
	autobid := fs.Bool("autobid", false, "Bid through the whole queue (implies --start)")
	fs.Parse(args)

	if *teams < 2 {
		fmt.Println("Error: --teams must be at least 2")
		os.Exit(1)
	}
	if *players < 1 {
		fmt.Println("Error: --players must be at least 1")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Auction Simulator: Full Flow ===")
	fmt.Println()

	// 1. Create host and auction
	fmt.Print("Creating host user and auction... ")
	host, hostToken, err := client.RegisterUser("AuctionHost")
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (host: %s)\n", host.DisplayName)

	auction, err := client.CreateAuction(hostToken, "Simulated Draft", *budget, *minBid, *timer)
	if err != nil {
		fmt.Printf("Failed to create auction: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Auction created: %s\n", auction.ID)

	// 2. Register captains and their teams
	fmt.Println()
	fmt.Printf("Adding %d captain teams:\n", *teams)
	captainTokens := make([]string, 0, *teams)
	for i := 0; i < *teams; i++ {
		captain, token, err := client.RegisterUser(fmt.Sprintf("Captain%d", i+1))
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create captain: %v\n", i+1, *teams, err)
			os.Exit(1)
		}

		teamName := fmt.Sprintf("Team %s", captain.DisplayName)
		if _, err := client.AddTeam(hostToken, auction.ID, captain.ID, teamName); err != nil {
			fmt.Printf("  [%d/%d] FAILED to add team: %v\n", i+1, *teams, err)
			os.Exit(1)
		}

		captainTokens = append(captainTokens, token)
		fmt.Printf("  [%d/%d] %s registered\n", i+1, *teams, teamName)
	}

	// 3. Fill the player pool
	fmt.Println()
	fmt.Printf("Adding %d players to the pool... ", *players)
	for i := 0; i < *players; i++ {
		name := fmt.Sprintf("Player %02d", i+1)
		if _, err := client.AddPlayer(hostToken, auction.ID, name); err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Println("OK")

	if !*start && !*autobid {
		fmt.Println()
		fmt.Println("=========================================")
		fmt.Println("  AUCTION SEEDED (draft stage)")
		fmt.Println("=========================================")
		fmt.Println()
		fmt.Printf("  Auction ID: %s\n", auction.ID)
		fmt.Printf("  Host token: %s\n", hostToken)
		fmt.Println()
		fmt.Println("  Start it with POST /api/v1/auctions/{id}/start")
		fmt.Println()
		return
	}

	// 4. Open the live auction
	fmt.Println()
	fmt.Print("Starting auction... ")
	state, err := client.StartAuction(hostToken, auction.ID)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (first up: %s)\n", state.CurrentPlayer.DisplayName)

	if !*autobid {
		fmt.Println()
		fmt.Println("=========================================")
		fmt.Println("  AUCTION LIVE")
		fmt.Println("=========================================")
		fmt.Println()
		fmt.Printf("  Auction ID: %s\n", auction.ID)
		fmt.Printf("  Host token: %s\n", hostToken)
		for i, token := range captainTokens {
			fmt.Printf("  Captain %d:  %s\n", i+1, token)
		}
		fmt.Println()
		return
	}

	// 5. Bid through the queue: rotating captains bid once, host hammers
	fmt.Println()
	fmt.Println("Auto-bidding through the queue:")
	sold := 0
	for i := 0; state.Status == "active" && state.CurrentPlayer != nil; i++ {
		player := state.CurrentPlayer.DisplayName

		// Leave every fourth player unsold to exercise the pass path
		if i%4 == 3 {
			state, err = client.NextPlayer(hostToken, auction.ID)
			if err != nil {
				fmt.Printf("  %s: FAILED to pass: %v\n", player, err)
				os.Exit(1)
			}
			fmt.Printf("  %s passed (unsold)\n", player)
			continue
		}

		bidder := captainTokens[i%len(captainTokens)]
		ask := state.NextMinimumBid
		if state.HighestBidderTeamID == nil {
			ask = state.CurrentBid
		}
		if state, err = client.PlaceBid(bidder, auction.ID, ask); err != nil {
			fmt.Printf("  %s: FAILED to bid %d: %v\n", player, ask, err)
			os.Exit(1)
		}
		if state, err = client.MarkSold(hostToken, auction.ID); err != nil {
			fmt.Printf("  %s: FAILED to sell: %v\n", player, err)
			os.Exit(1)
		}
		sold++
		fmt.Printf("  %s sold for %d tokens\n", player, ask)

		if state.Status == "active" {
			if state, err = client.NextPlayer(hostToken, auction.ID); err != nil {
				fmt.Printf("  FAILED to advance: %v\n", err)
				os.Exit(1)
			}
		}
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  AUCTION COMPLETE")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  Auction ID: %s\n", auction.ID)
	fmt.Printf("  Players sold: %d of %d\n", sold, *players)
	fmt.Printf("  Final status: %s\n", state.Status)
	fmt.Println()
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	auctionID := fs.String("auction", "", "Auction ID (required)")
	token := fs.String("token", "", "Host access token (required)")
	count := fs.Int("count", 5, "Number of players to add")
	fs.Parse(args)

	if *auctionID == "" || *token == "" {
		fmt.Println("Error: --auction and --token are required")
		fmt.Println("\nUsage: simulator populate --auction=<id> --token=<host-token> [--count=5]")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Printf("Adding %d players to auction %s...\n\n", *count, *auctionID)

	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("Extra Player %02d", i+1)
		if _, err := client.AddPlayer(*token, *auctionID, name); err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *count, err)
			continue
		}
		fmt.Printf("  [%d/%d] %s added\n", i+1, *count, name)
	}

	fmt.Println()
	fmt.Println("Done!")
}
