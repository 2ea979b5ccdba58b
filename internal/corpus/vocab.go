// Package corpus loads sentence-pair data and batches it into the
// samples the models consume.
package corpus

// Reserved vocabulary tokens.
const (
	PadToken = "<PAD>"
	UnkToken = "<UNK>"
)

// Vocab is a token -> id mapping with reserved pad and unknown entries.
type Vocab struct {
	ids   map[string]int
	words []string
}

// NewVocab creates a vocabulary containing only the reserved tokens.
func NewVocab() *Vocab {
	v := &Vocab{ids: make(map[string]int)}
	v.Add(PadToken)
	v.Add(UnkToken)
	return v
}

// Add inserts a word if absent and returns its id.
func (v *Vocab) Add(word string) int {
	if id, ok := v.ids[word]; ok {
		return id
	}
	id := len(v.words)
	v.ids[word] = id
	v.words = append(v.words, word)
	return id
}

// ID returns the id for a word, or the unknown id if absent.
func (v *Vocab) ID(word string) int {
	if id, ok := v.ids[word]; ok {
		return id
	}
	return v.ids[UnkToken]
}

// PadID returns the reserved pad id.
func (v *Vocab) PadID() int {
	return v.ids[PadToken]
}

// Size returns the number of distinct words, reserved tokens included.
func (v *Vocab) Size() int {
	return len(v.words)
}

// Map returns the underlying token -> id mapping.
func (v *Vocab) Map() map[string]int {
	return v.ids
}

// Word returns the word for an id.
func (v *Vocab) Word(id int) string {
	return v.words[id]
}
