// Package prompt assembles the completion request for an advisory turn.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nadzzz/kisanvani/internal/history"
	"github.com/nadzzz/kisanvani/internal/intent"
	"github.com/nadzzz/kisanvani/internal/snapshot"
)

// languageNames maps response language codes to the name used in the
// preamble. Unknown codes are used as given.
var languageNames = map[string]string{
	"ml": "Malayalam",
	"te": "Telugu",
	"hi": "Hindi",
	"ta": "Tamil",
	"kn": "Kannada",
	"en": "English",
}

// LanguageName returns the display name for a language code.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// Builder composes prompts for a fixed response language.
type Builder struct {
	// Language is the code of the language and script the answer must use.
	Language string
}

// New returns a Builder for the given response language code.
func New(language string) *Builder {
	return &Builder{Language: language}
}

// Build returns the full prompt text. Output depends only on its inputs;
// map-valued snapshot sections are serialized with sorted keys.
func (b *Builder) Build(query string, in intent.Intent, window []history.Turn, snap snapshot.Snapshot) string {
	var sb strings.Builder

	b.writePreamble(&sb)
	writeSnapshot(&sb, snap)

	if len(window) > 0 {
		sb.WriteString("\n\nPREVIOUS CONVERSATION:\n")
		for _, t := range window {
			fmt.Fprintf(&sb, "Farmer: %s\n", t.Query)
			fmt.Fprintf(&sb, "Assistant: %s\n\n", t.Response)
		}
	}

	fmt.Fprintf(&sb, "\nFarmer Query: %s\n", query)
	fmt.Fprintf(&sb, "Intent Category: %s\n\n", in)
	sb.WriteString("Provide helpful advice:")
	return sb.String()
}

func (b *Builder) writePreamble(sb *strings.Builder) {
	lang := LanguageName(b.Language)
	fmt.Fprintf(sb, "You are an expert farmer advisory AI assistant specializing in Indian agriculture. "+
		"You can understand queries in %s written in %s script.\n\n", lang, lang)
	sb.WriteString("CRITICAL RESPONSE INSTRUCTIONS:\n")
	fmt.Fprintf(sb, "1. ALWAYS respond in %s using %s script\n", lang, lang)
	sb.WriteString("2. Keep responses SHORT - 2 to 3 sentences at most\n")
	sb.WriteString("3. Be direct and practical\n")
	sb.WriteString("4. Use simple everyday words\n")
	sb.WriteString("5. Give specific actionable advice and never discourage the farmer\n")
	sb.WriteString("6. Include prices/numbers when relevant\n\n")
}

func writeSnapshot(sb *strings.Builder, snap snapshot.Snapshot) {
	p := snap.Profile
	sb.WriteString("FARMER PROFILE:\n")
	fmt.Fprintf(sb, "- Name: %s\n", p.Name)
	fmt.Fprintf(sb, "- Location: %s\n", p.Location)
	fmt.Fprintf(sb, "- Farm Size: %s\n", p.FarmSize)
	fmt.Fprintf(sb, "- Crops: %s\n", strings.Join(p.Crops, ", "))
	fmt.Fprintf(sb, "- Soil Type: %s\n", p.SoilType)
	fmt.Fprintf(sb, "- Irrigation: %s\n", p.Irrigation)
	fmt.Fprintf(sb, "- Last Yields: %s\n", formatPairs(p.LastYield))
	if p.UpcomingSeason != "" {
		fmt.Fprintf(sb, "- Upcoming Season: %s\n", p.UpcomingSeason)
	}

	sb.WriteString("\nCURRENT CONDITIONS:\n")
	fmt.Fprintf(sb, "- Weather: %s\n", snap.Weather.Current)
	fmt.Fprintf(sb, "- Forecast: %s\n", snap.Weather.Forecast)
	fmt.Fprintf(sb, "- Weather Advisory: %s\n", snap.Weather.Advisory)

	sb.WriteString("\nMARKET PRICES (Current):\n")
	sb.WriteString(indentJSON(snap.Market))
	sb.WriteString("\n\nPEST/DISEASE ALERTS:\n")
	sb.WriteString(indentJSON(snap.PestAlerts))
	sb.WriteString("\n\nAVAILABLE SCHEMES:\n")
	sb.WriteString(indentJSON(snap.Schemes))
}

// formatPairs renders a string map as "k: v, k: v" in key order.
func formatPairs(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+m[k])
	}
	return strings.Join(parts, ", ")
}

// indentJSON marshals v for human reading. encoding/json sorts map keys.
func indentJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}
