package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
)

// ScoreSubmission represents a score submission message
type ScoreSubmission struct {
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
	Value    int64  `json:"value"`
}

var playerPrefixes = []string{
	"Phoenix", "Shadow", "Thunder", "Storm", "Blaze", "Ninja", "Dragon", "Wolf", "Hawk", "Viper",
	"Ghost", "Titan", "Frost", "Cyber", "Nova", "Raven", "Omega", "Alpha", "Delta", "Sigma",
}

func getPlayerName(idx int) string {
	prefixIdx := idx % len(playerPrefixes)
	suffix := idx/len(playerPrefixes) + 1
	return fmt.Sprintf("%s%d", playerPrefixes[prefixIdx], suffix)
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "arcade-scores", "Kafka topic")
	gameID := flag.String("game", "pinball", "Game ID to submit scores for")
	totalPlayers := flag.Int("players", 500, "Number of players to simulate")
	updatesPerSecond := flag.Int("rate", 50, "Score submissions per second")
	lowerIsBetter := flag.Bool("lower-is-better", false, "Generate time-style scores where smaller is better")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Printf("arcade score producer\n")
	fmt.Printf("  brokers: %s\n", *brokers)
	fmt.Printf("  topic:   %s\n", *topic)
	fmt.Printf("  game:    %s\n", *gameID)
	fmt.Printf("  players: %d\n", *totalPlayers)
	fmt.Printf("  rate:    %d/sec\n", *updatesPerSecond)
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	// Send message helper
	sendMessage := func(submission ScoreSubmission) {
		data, err := json.Marshal(submission)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(submission.PlayerID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	// Generate a score value for a player. Points-style games spread scores
	// upward; time-style games spread downward toward a floor.
	makeValue := func() int64 {
		if *lowerIsBetter {
			return int64(rand.Intn(120) + 20)
		}
		return int64(rand.Intn(5000) + 100)
	}

	shutdown := func(reason string) {
		fmt.Printf("\n%s\n", reason)
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("sent: %d, errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	interval := time.Second / time.Duration(*updatesPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	var updateCount int64

	fmt.Println("Press Ctrl+C to stop")

	for {
		select {
		case <-sigChan:
			shutdown("shutting down...")
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				shutdown("duration reached, shutting down...")
				return
			}

			submission := ScoreSubmission{
				PlayerID: getPlayerName(rand.Intn(*totalPlayers)),
				GameID:   *gameID,
				Value:    makeValue(),
			}
			sendMessage(submission)
			atomic.AddInt64(&updateCount, 1)

		case <-statsTicker.C:
			fmt.Printf("[%s] submitted: %d | sent: %d | errors: %d\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&updateCount),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
