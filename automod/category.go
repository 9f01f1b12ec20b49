package automod

import (
	"fmt"
	"strings"
)

// Content category assigned to a message by the classifier.
//
// The string value is the label the oracle is asked to answer with.
type Category string

const (
	Funny          Category = "Funny"
	Plain          Category = "Plain"
	Helpful        Category = "Helpful"
	Curious        Category = "Curious"
	SuperOffensive Category = "Super Offensive"
)

// Categories which are tallied per user. SuperOffensive is deliberately absent: those messages are removed, not counted.
var TallyCategories = []Category{Funny, Plain, Helpful, Curious}

// All recognized categories, in prompt order.
var AllCategories = []Category{Funny, Plain, Helpful, Curious, SuperOffensive}

// Parses a category label. The match is exact after trimming surrounding whitespace; the compact spelling "SuperOffensive" is also accepted.
func ParseCategory(raw string) (Category, error) {
	s := strings.TrimSpace(raw)
	if s == "SuperOffensive" {
		return SuperOffensive, nil
	}
	for _, c := range AllCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unrecognized category label: %q", raw)
}

func (c Category) String() string {
	return string(c)
}

// Whether messages in this category increment the per-user tallies.
func (c Category) IsTally() bool {
	switch c {
	case Funny, Plain, Helpful, Curious:
		return true
	}
	return false
}
