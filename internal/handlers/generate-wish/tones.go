// internal/handlers/generate-wish/tones.go
package generatewish

import "strings"

// Tone selects the prompt template used for a wish.
type Tone int

const (
	TonePhilosophical Tone = iota
	ToneEmotional
	ToneFunny
	ToneRomantic
	ToneFormal
	ToneHinglish
	ToneHindi
	ToneShort
)

// DefaultTone is used for every identifier that is not recognized.
const DefaultTone = ToneEmotional

// TargetPlaceholder is replaced by the recipient in every user pattern.
const TargetPlaceholder = "{target}"

var toneNames = [...]string{
	TonePhilosophical: "philosophical",
	ToneEmotional:     "emotional",
	ToneFunny:         "funny",
	ToneRomantic:      "romantic",
	ToneFormal:        "formal",
	ToneHinglish:      "hinglish",
	ToneHindi:         "hindi",
	ToneShort:         "short",
}

func (t Tone) String() string {
	if t < 0 || int(t) >= len(toneNames) {
		return toneNames[DefaultTone]
	}
	return toneNames[t]
}

// ParseTone maps an arbitrary identifier to a Tone. Matching is exact;
// anything else, including the empty string, yields DefaultTone.
func ParseTone(s string) Tone {
	for i, name := range toneNames {
		if name == s {
			return Tone(i)
		}
	}
	return DefaultTone
}

// Tones lists every known tone in declaration order.
func Tones() []Tone {
	out := make([]Tone, len(toneNames))
	for i := range toneNames {
		out[i] = Tone(i)
	}
	return out
}

// ToneTemplate is a fixed system instruction plus a user instruction pattern
// containing TargetPlaceholder.
type ToneTemplate struct {
	System string
	User   string
}

// TemplateFor returns the template for t. Values outside the enumeration
// get the DefaultTone template.
func TemplateFor(t Tone) ToneTemplate {
	switch t {
	case TonePhilosophical:
		return ToneTemplate{
			System: "You are a philosophical writer. Write ONE short inspiring quote from Socrates, Rumi, Kabir, or Chanakya with 2-3 lines of New Year wish. Total under 60 words.",
			User:   "Write a philosophical New Year 2026 wish for my {target} with one wise quote.",
		}
	case ToneEmotional:
		return ToneTemplate{
			System: "Write short, heartfelt wishes in 3-4 lines max. Use emojis. Under 50 words.",
			User:   "Write an emotional New Year 2026 wish for my {target}.",
		}
	case ToneFunny:
		return ToneTemplate{
			System: "Write 2-3 funny lines with jokes in Hinglish. Super casual. Under 40 words.",
			User:   "Write a funny New Year 2026 wish for my {target}.",
		}
	case ToneRomantic:
		return ToneTemplate{
			System: "Write ONE 2-line shayari + 1 short romantic line. Total under 50 words. Beautiful Urdu words.",
			User:   "Write romantic shayari for my {target} for New Year 2026.",
		}
	case ToneFormal:
		return ToneTemplate{
			System: "Write 2-3 formal professional lines. Under 40 words.",
			User:   "Write a formal New Year 2026 wish for my {target}.",
		}
	case ToneHinglish:
		return ToneTemplate{
			System: "Write 2-3 casual Hinglish lines with emojis. Under 40 words.",
			User:   "Write Hinglish New Year 2026 wish for my {target}.",
		}
	case ToneHindi:
		return ToneTemplate{
			System: "Write ONLY in pure Hindi (Devanagari). Short 3-4 lines. Under 50 words. Traditional style.",
			User:   "{target} के लिए छोटी हिंदी में नववर्ष 2026 की शुभकामना लिखो।",
		}
	case ToneShort:
		return ToneTemplate{
			System: "Write ONLY 1-2 lines. Maximum 25 words. Super short and impactful.",
			User:   "Write very short New Year 2026 wish for my {target}.",
		}
	default:
		return TemplateFor(DefaultTone)
	}
}

// Prompt is a template with the recipient substituted in.
type Prompt struct {
	Tone   Tone
	System string
	User   string
}

// Render substitutes target into the user pattern. target is used verbatim.
func (tt ToneTemplate) Render(target string) (system, user string) {
	return tt.System, strings.ReplaceAll(tt.User, TargetPlaceholder, target)
}

// Resolve turns a raw (tone, target) pair into a concrete prompt. It never
// fails.
func Resolve(tone, target string) Prompt {
	t := ParseTone(tone)
	system, user := TemplateFor(t).Render(target)
	return Prompt{Tone: t, System: system, User: user}
}
