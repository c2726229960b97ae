package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"chatsync/pkg/history"
	"chatsync/pkg/logger"
)

// inspect opens a conversation archive and prints its contents. Useful for
// verifying what the loopback sender and push ingress actually persisted.
func main() {
	var (
		path   string
		chat   string
		offset int
		limit  int
	)
	flag.StringVar(&path, "path", "", "pebble dir to open (the store/ dir under the archive path)")
	flag.StringVar(&chat, "chat", "", "conversation ID to dump (empty lists conversations)")
	flag.IntVar(&offset, "offset", 0, "messages to skip counting back from newest")
	flag.IntVar(&limit, "limit", 50, "maximum messages to print")
	flag.Parse()
	if path == "" {
		fmt.Fprintln(os.Stderr, "--path required")
		os.Exit(2)
	}

	logger.Init()
	if err := history.Open(path); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open archive: %v\n", err)
		os.Exit(1)
	}
	defer history.Close()

	if chat == "" {
		chats, err := history.Chats()
		if err != nil {
			fmt.Fprintf(os.Stderr, "list failed: %v\n", err)
			os.Exit(1)
		}
		for _, c := range chats {
			n, _ := history.Count(c)
			fmt.Printf("%s\t%d\n", c, n)
		}
		return
	}

	msgs, err := history.FetchPage(context.Background(), chat, offset, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	for _, m := range msgs {
		_ = enc.Encode(m)
	}
}
