// Package miztl translates the player-facing text of DCS mission archives
// (.miz files) using AI providers.
//
// Text is collected from two places inside a mission: the string dictionary
// (l10n/DEFAULT/dictionary) and trigger script lines that assign text fields
// (l10n/DEFAULT/*.lua). Every distinct source string is translated once,
// cached by content, and written back into a language variant of the resource
// (for example l10n/CN/dictionary). The default-language resources are never
// modified.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/miztl"
//	    "github.com/ZaguanLabs/miztl/cache"
//	    "github.com/ZaguanLabs/miztl/processor"
//	    "github.com/ZaguanLabs/miztl/provider"
//	)
//
//	func main() {
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    c, err := cache.Load(ctx, cache.NewFileStore(dir), "CN")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    t := miztl.NewTranslator("CN", p,
//	        miztl.WithCache(c),
//	        miztl.WithProcessors(processor.NewDictionaryProcessor(), processor.NewTokenProcessor()),
//	    )
//
//	    result, err := t.TranslateFile(context.Background(), "mission.miz")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.CacheLocation)
//	}
package miztl
