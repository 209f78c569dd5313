package main

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// Stream audio in chunks to simulate real-time capture
// At 24kHz 16-bit mono = 48000 bytes/second
// 100ms chunks = 4800 bytes
const chunkSize = 4800
const chunkIntervalMs = 100

func main() {
	audioFile := flag.String("audio", "testdata/sample-24khz.wav", "Path to WAV file (24kHz 16-bit mono PCM)")
	serverAddr := flag.String("server", "localhost:8000", "Relay server address")
	token := flag.String("token", os.Getenv("RELAY_TOKEN"), "Supabase access token")
	targetLang := flag.String("lang", "es", "Target language code")
	waitFor := flag.Duration("wait", 30*time.Second, "How long to wait for translation events after commit")
	flag.Parse()

	if *token == "" {
		log.Fatal("A token is required (flag -token or env RELAY_TOKEN)")
	}

	// Open audio file
	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	// Read and validate WAV header
	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Fatal("Only PCM format supported")
	}
	if sampleRate != 24000 {
		log.Printf("Warning: Sample rate is %d Hz, expected 24000 Hz", sampleRate)
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     *serverAddr,
		Path:     "/v1/translate/audio/realtime",
		RawQuery: url.Values{"token": {*token}, "target_lang": {*targetLang}}.Encode(),
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("Connected to %s, targetLang=%s", *serverAddr, *targetLang)

	// Print every event the relay sends until the connection drops.
	events := make(chan struct{})
	go func() {
		defer close(events)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev struct {
				Type    string `json:"type"`
				Message string `json:"message,omitempty"`
				Text    string `json:"text,omitempty"`
				Error   string `json:"error,omitempty"`
			}
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Printf("<- unparseable: %s", data)
				continue
			}
			switch {
			case ev.Error != "":
				log.Printf("<- %s: %s", ev.Type, ev.Error)
			case ev.Text != "":
				log.Printf("<- %s: %s", ev.Type, ev.Text)
			default:
				log.Printf("<- %s: %s", ev.Type, ev.Message)
			}
		}
	}()

	send := func(msg map[string]any) {
		if err := conn.WriteJSON(msg); err != nil {
			log.Fatalf("Failed to send message: %v", err)
		}
	}

	send(map[string]any{"type": "start"})

	// Stream audio in chunks
	audioChunk := make([]byte, chunkSize)
	var totalBytes int64
	var chunkNum int
	startTime := time.Now()

	for {
		n, err := f.Read(audioChunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read audio: %v", err)
		}

		chunkNum++
		totalBytes += int64(n)

		send(map[string]any{
			"type": "audio",
			"data": base64.StdEncoding.EncodeToString(audioChunk[:n]),
		})

		if chunkNum%10 == 0 {
			log.Printf("Sent chunk %d (%d bytes total)", chunkNum, totalBytes)
		}

		// Simulate real-time capture
		time.Sleep(chunkIntervalMs * time.Millisecond)
	}

	elapsed := time.Since(startTime)
	log.Printf("Finished streaming: %d chunks, %d bytes in %v", chunkNum, totalBytes, elapsed)

	send(map[string]any{"type": "commit"})
	log.Println("Committed audio, waiting for translation...")

	select {
	case <-events:
		log.Println("Connection closed by server")
	case <-time.After(*waitFor):
		log.Println("Done waiting, stopping session")
		send(map[string]any{"type": "stop"})
		select {
		case <-events:
		case <-time.After(3 * time.Second):
		}
	}
}
