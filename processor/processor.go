// Package processor provides the strategies that pull translatable strings
// out of mission resources and write translated language variants back.
package processor

import "github.com/ZaguanLabs/miztl"

// EntriesProcessor is an alias to the main package interface.
type EntriesProcessor = miztl.EntriesProcessor

// Default returns the processors used for a full mission translation, in
// the order they run.
func Default() []EntriesProcessor {
	return []EntriesProcessor{
		NewDictionaryProcessor(),
		NewTokenProcessor(),
	}
}
