// sign-interaction assina e envia uma interação de teste para o gateway,
// como a plataforma faria. Use --keygen para gerar o par de chaves local e
// configure o PUBLIC_KEY impresso no gateway.
package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jessevdk/go-flags"

	"interactions-gateway/interactions"
)

type Options struct {
	URL      string        `long:"url" env:"GATEWAY_URL" default:"http://localhost:8080/api/discord-bot/interactions" description:"Webhook endpoint"`
	Seed     string        `long:"seed" env:"SIGNING_SEED" description:"Hex ed25519 seed (32 bytes)"`
	Command  string        `long:"command" short:"c" description:"Slash command name; empty sends a ping"`
	Username string        `long:"username" default:"tester" description:"Member username in the interaction"`
	Timeout  time.Duration `long:"timeout" default:"10s" description:"Request timeout"`
	Keygen   bool          `long:"keygen" description:"Print a new seed and its public key, then exit"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Keygen {
		seed, pub, err := keygen()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("SIGNING_SEED=%s\nPUBLIC_KEY=%s\n", seed, pub)
		return
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts Options, out io.Writer) error {
	key, err := privateKey(opts.Seed)
	if err != nil {
		return err
	}

	body, err := buildInteraction(opts.Command, opts.Username, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	req, err := signedRequest(ctx, opts.URL, key, body, time.Now())
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("post interaction: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	fmt.Fprintf(out, "%d %s\n", resp.StatusCode, bytes.TrimSpace(raw))
	return nil
}

func keygen() (seedHex, publicHex string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(priv.Seed()), hex.EncodeToString(pub), nil
}

func privateKey(seedHex string) (ed25519.PrivateKey, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// buildInteraction monta um ping ou um application command com id snowflake
// gerado a partir de now.
func buildInteraction(command, username string, now time.Time) ([]byte, error) {
	const discordEpochMs = 1420070400000
	id := strconv.FormatInt((now.UnixMilli()-discordEpochMs)<<22, 10)

	payload := map[string]any{
		"id":             id,
		"application_id": "0",
		"type":           discordgo.InteractionPing,
		"token":          "local",
		"version":        1,
	}
	if command != "" {
		payload["type"] = discordgo.InteractionApplicationCommand
		payload["data"] = map[string]any{
			"id":   id,
			"name": command,
			"type": discordgo.ChatApplicationCommand,
		}
		payload["member"] = map[string]any{
			"user": map[string]any{"id": "1", "username": username},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode interaction: %w", err)
	}
	return body, nil
}

func signedRequest(ctx context.Context, url string, key ed25519.PrivateKey, body []byte, now time.Time) (*http.Request, error) {
	timestamp := strconv.FormatInt(now.Unix(), 10)
	sig := ed25519.Sign(key, append([]byte(timestamp), body...))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(interactions.HeaderTimestamp, timestamp)
	req.Header.Set(interactions.HeaderSignature, hex.EncodeToString(sig))
	return req, nil
}
