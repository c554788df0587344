package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/campaignrec/core"
)

var campaigns = []string{
	"camp_summer_sale",
	"camp_fitness_launch",
	"camp_travel_deals",
	"camp_tech_preorder",
	"camp_loyalty_rewards",
	"camp_home_makeover",
}

// messagesByIntent maps each intent to message templates seen in that kind
// of conversation.
var messagesByIntent = map[string][]string{
	"interest": {
		"I saw your ad for the new running shoes, do they come in wide sizes?",
		"Tell me more about the travel package to Lisbon.",
		"Is the smart thermostat compatible with older heating systems?",
		"The summer collection looks great, when does it ship?",
		"I keep seeing the preorder banner, what does it include?",
		"Does the rewards program cover in-store purchases too?",
	},
	"purchase": {
		"Just ordered the trail pack, can I add express shipping?",
		"I bought two tickets through the deals page yesterday.",
		"Checkout went through, where do I find my order number?",
		"Picked up the starter kit during the sale, thanks!",
		"I redeemed my points for the headphones this morning.",
		"Order placed, hoping it arrives before the weekend.",
	},
	"question": {
		"What is your return window for sale items?",
		"Do you ship to Canada?",
		"How do I change the email on my account?",
		"Is there a student discount?",
		"Can I combine the loyalty coupon with the seasonal promo?",
		"Which sizes run small in this lineup?",
	},
	"complaint": {
		"My package arrived two weeks late and the box was damaged.",
		"The discount code from the email does not work at checkout.",
		"I was charged twice for the same order.",
		"The product looks nothing like the campaign photos.",
		"Support has not replied to my ticket in five days.",
		"The app keeps logging me out when I try to redeem points.",
	},
}

var intents = []string{"interest", "purchase", "question", "complaint"}

var (
	outFile  = flag.String("out", "data/sample_conversations.json", "output JSON file")
	numUsers = flag.Int("users", 20, "number of distinct users")
	count    = flag.Int("count", 200, "number of conversation records")
	seed     = flag.Int64("seed", 0, "random seed (0 = time-based)")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// generate produces count conversation records across the user pool. Each
// user leans toward a home campaign so engagement counts differ enough to
// make the ranking interesting.
func generate(rng *rand.Rand, users, count int) []*core.ConversationRecord {
	records := make([]*core.ConversationRecord, 0, count)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		userNum := rng.Intn(users) + 1
		userID := fmt.Sprintf("u%03d", userNum)

		// 70% of a user's messages land on their home campaign.
		campaignID := campaigns[rng.Intn(len(campaigns))]
		if rng.Float64() < 0.7 {
			campaignID = campaigns[userNum%len(campaigns)]
		}

		intent := intents[rng.Intn(len(intents))]
		templates := messagesByIntent[intent]

		records = append(records, &core.ConversationRecord{
			MessageID:  fmt.Sprintf("m%05d", i+1),
			UserID:     userID,
			CampaignID: campaignID,
			Timestamp:  base.Add(time.Duration(i) * 7 * time.Minute).Format(time.RFC3339),
			Intent:     intent,
			Message:    templates[rng.Intn(len(templates))],
		})
	}

	return records
}

func main() {
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	records := generate(rng, *numUsers, *count)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		panic(err)
	}

	if dir := filepath.Dir(*outFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
	}
	if err := os.WriteFile(*outFile, data, 0o644); err != nil {
		panic(err)
	}

	slog.Info("wrote sample conversations",
		"file", *outFile,
		"records", len(records),
		"users", *numUsers,
		"seed", rngSeed,
	)
}
