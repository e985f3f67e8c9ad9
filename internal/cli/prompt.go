package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForDirectory prompts the user interactively for a library directory.
// Returns the current directory if the user enters nothing.
func PromptForDirectory() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	fmt.Printf("Library directory [%s]: ", cwd)

	input, err := readLine(os.Stdin)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read input, using current directory")
		return cwd
	}
	if input == "" {
		return cwd
	}
	return input
}

// Confirm asks a yes/no question on stdout and reads the answer from in.
// Anything other than y or yes is a no.
func Confirm(in io.Reader, question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	input, err := readLine(in)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read confirmation, assuming no")
		return false
	}
	switch strings.ToLower(input) {
	case "y", "yes":
		return true
	}
	return false
}

func readLine(in io.Reader) (string, error) {
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
