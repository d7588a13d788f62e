package main

import (
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
)

// migratecheck normalizes a stored board document: it reads raw board JSON
// from a file argument or stdin, runs migration and prints the resulting
// document. Useful for inspecting what an old cache or remote record becomes
// on load.
func main() {
	var data []byte
	var err error
	if len(os.Args) > 1 {
		data, err = os.ReadFile(os.Args[1])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	b := board.MigrateJSON(data)
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}
