package prompts

import (
	_ "embed"
	"math/rand/v2"
	"strings"
	"sync"
)

//go:embed prompts.txt
var bank string

var (
	loadOnce sync.Once
	all      []string
)

func load() {
	for _, line := range strings.Split(bank, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			all = append(all, line)
		}
	}
}

// All returns a copy of the embedded prompt bank.
func All() []string {
	loadOnce.Do(load)
	return append([]string(nil), all...)
}

// Pick returns n distinct prompts chosen at random (fewer if the bank is smaller).
func Pick(n int) []string {
	return pickFrom(All(), n, rand.Shuffle)
}

func pickFrom(words []string, n int, shuffle func(int, func(i, j int))) []string {
	if n <= 0 {
		return nil
	}
	shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	if n > len(words) {
		n = len(words)
	}
	return words[:n]
}
