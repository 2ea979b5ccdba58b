package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Pair is one labeled sentence pair. Label is 1 for a semantic match,
// 0 otherwise.
type Pair struct {
	Label float64
	Sent1 []string
	Sent2 []string
}

// LoadPairs reads tab-separated sentence pairs:
//
//	label \t sentence 1 \t sentence 2
//
// Sentences are whitespace-tokenized. Blank lines are skipped.
func LoadPairs(path string) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pairs: %w", err)
	}
	defer file.Close()

	var pairs []Pair
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 tab-separated fields, got %d", lineNo, len(fields))
		}
		label, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid label %q", lineNo, fields[0])
		}
		pairs = append(pairs, Pair{
			Label: label,
			Sent1: strings.Fields(fields[1]),
			Sent2: strings.Fields(fields[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}
	return pairs, nil
}

// LoadProps reads proposition annotations aligned with a pairs file.
// Each sentence of each pair gets one line (sentence 1 of pair 1,
// sentence 2 of pair 1, sentence 1 of pair 2, ...). A line holds one
// tab-separated field per word; each field is a space-separated list of
// proposition tokens, with "-" meaning no propositions for that word.
func LoadProps(path string) ([][][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open props: %w", err)
	}
	defer file.Close()

	var sents [][][]string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		words := make([][]string, len(fields))
		for i, f := range fields {
			if f == "-" || f == "" {
				continue
			}
			words[i] = strings.Fields(f)
		}
		sents = append(sents, words)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read props: %w", err)
	}
	return sents, nil
}

// BuildVocab collects every word of the given pairs into a vocabulary.
func BuildVocab(pairs []Pair) *Vocab {
	v := NewVocab()
	for _, p := range pairs {
		for _, w := range p.Sent1 {
			v.Add(w)
		}
		for _, w := range p.Sent2 {
			v.Add(w)
		}
	}
	return v
}

// BuildPropVocab collects every proposition token into a vocabulary.
func BuildPropVocab(sents [][][]string) *Vocab {
	v := NewVocab()
	for _, sent := range sents {
		for _, props := range sent {
			for _, p := range props {
				v.Add(p)
			}
		}
	}
	return v
}
