// Command esky-send replays eSky620 sentences against a running server,
// either over the device TCP listener or through the HTTP raw endpoint.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Sample sentences captured from a real device
var sampleSentences = []string{
	"EL;1;123456789012345;150408015203;",
	"EO;1;123456789012345;RG;4+150407185854+44.58039+-74.71671+0.24+0+4241+1",
	"EO;1;123456789012345;RG;4+150407193657+44.58023+-74.71762+0.93+353+4301+1",
	"EO;1;123456789012345;RG;4+150407194144+44.57993+-74.71756+0.77+169+4241+1",
	"EO;1;123456789012345;RG;5+150407202222+44.57999+-74.71773+0.73+344+4210+1",
	"EO;1;123456789012345;RG;5+150407212257+44.58000+-74.71766+0.66+70+4159+1",
}

type rawSentenceRequest struct {
	Sentence string `json:"sentence"`
}

func main() {
	addr := pflag.String("addr", "localhost:5023", "device listener address")
	httpURL := pflag.String("http", "", "post to this API base URL instead of the TCP listener, e.g. http://localhost:8000")
	token := pflag.String("token", "", "bearer token for the HTTP API")
	file := pflag.StringP("file", "f", "", "file with one sentence per line (default: built-in samples)")
	interval := pflag.Duration("interval", 500*time.Millisecond, "delay between sentences")
	pflag.Parse()

	sentences, err := loadSentences(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read sentences: %v\n", err)
		os.Exit(1)
	}

	if *httpURL != "" {
		err = sendHTTP(strings.TrimSuffix(*httpURL, "/"), *token, sentences, *interval)
	} else {
		err = sendTCP(*addr, sentences, *interval)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func loadSentences(path string) ([]string, error) {
	if path == "" {
		return sampleSentences, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sentences []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			sentences = append(sentences, line)
		}
	}
	return sentences, scanner.Err()
}

func sendTCP(addr string, sentences []string, interval time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	for i, sentence := range sentences {
		if _, err := conn.Write([]byte(sentence + "\r\n")); err != nil {
			return fmt.Errorf("failed to send sentence %d: %w", i+1, err)
		}
		fmt.Printf("sent %s\n", sentence)
		time.Sleep(interval)
	}
	return nil
}

func sendHTTP(baseURL, token string, sentences []string, interval time.Duration) error {
	client := &http.Client{Timeout: 10 * time.Second}

	for _, sentence := range sentences {
		body, err := json.Marshal(rawSentenceRequest{Sentence: sentence})
		if err != nil {
			return err
		}

		req, err := http.NewRequest(http.MethodPost, baseURL+"/api/positions/raw", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		fmt.Printf("%s -> %d %s\n", sentence, resp.StatusCode, strings.TrimSpace(string(respBody)))
		time.Sleep(interval)
	}
	return nil
}
