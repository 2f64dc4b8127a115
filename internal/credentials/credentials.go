package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Word lists for generating memorable initial passwords
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "swift", "clever", "jolly", "mighty",
	"lucky", "gentle", "quick", "royal", "bold", "kind", "calm", "proud",
	"eager", "neat", "tidy", "honest", "loyal", "polite", "smart", "steady",
}

var nouns = []string{
	"lotus", "bamboo", "river", "mountain", "dragon", "tiger", "eagle", "lantern",
	"banyan", "crane", "phoenix", "turtle", "buffalo", "orchid", "harbor", "meadow",
	"comet", "star", "rocket", "compass", "notebook", "pencil", "library", "garden",
}

// GenerateInitialPassword creates a password like "brave-lotus-4821" for new
// staff accounts. It is always long enough to pass password validation.
func GenerateInitialPassword() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	digits, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", adjective, noun, digits.Int64()), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}
	return slice[num.Int64()], nil
}
