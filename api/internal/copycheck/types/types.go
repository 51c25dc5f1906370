package types

type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformFacebook  Platform = "Facebook"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformX         Platform = "X/Twitter"
	PlatformTikTok    Platform = "TikTok"
	PlatformYouTube   Platform = "YouTube"
	PlatformThreads   Platform = "Threads"
	PlatformPinterest Platform = "Pinterest"
)

// Platforms lists every platform a request may target.
var Platforms = []Platform{
	PlatformInstagram,
	PlatformFacebook,
	PlatformLinkedIn,
	PlatformX,
	PlatformTikTok,
	PlatformYouTube,
	PlatformThreads,
	PlatformPinterest,
}

func (p Platform) Valid() bool {
	for _, v := range Platforms {
		if v == p {
			return true
		}
	}
	return false
}

type AssetType string

const (
	AssetVideo    AssetType = "Video"
	AssetDesign   AssetType = "Design"
	AssetCarousel AssetType = "Carousel"
)

var AssetTypes = []AssetType{AssetVideo, AssetDesign, AssetCarousel}

func (a AssetType) Valid() bool {
	for _, v := range AssetTypes {
		if v == a {
			return true
		}
	}
	return false
}

// DefaultReadingLevel is used when the request does not name a target.
const DefaultReadingLevel = "Grade 7"

type Tone struct {
	Confident     float64 `json:"confident"`
	Compassionate float64 `json:"compassionate"`
	EvidenceLed   float64 `json:"evidenceLed"`
}

func DefaultTone() Tone {
	return Tone{Confident: 0.8, Compassionate: 0.7, EvidenceLed: 1.0}
}

// Constraints are the hard limits every emitted text must satisfy.
// MaxHashtags == nil means the hashtag count is unlimited.
type Constraints struct {
	MaxChars    int  `json:"maxChars"`
	MaxHashtags *int `json:"maxHashtags,omitempty"`
	RequireCTA  bool `json:"requireCTA"`
}

type Brand struct {
	BannedWords     []string `json:"bannedWords"`
	RequiredPhrases []string `json:"requiredPhrases"`
	Tone            Tone     `json:"tone"`
}

// Input is a validated copy-check request.
type Input struct {
	Text               string      `json:"text"`
	Platform           Platform    `json:"platform"`
	AssetType          AssetType   `json:"assetType"`
	ReadingLevelTarget string      `json:"readingLevelTarget"`
	Constraints        Constraints `json:"constraints"`
	Brand              Brand       `json:"brand"`
}

// WithText returns a copy of the input carrying a different text.
func (in Input) WithText(text string) Input {
	in.Text = text
	return in
}

type Score struct {
	Clarity      float64 `json:"clarity"`
	Brevity      float64 `json:"brevity"`
	Hook         float64 `json:"hook"`
	Fit          float64 `json:"fit"`
	ReadingLevel string  `json:"readingLevel"`
}

type Suggestion struct {
	Text string `json:"text"`
}

type Variant struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Output is the response body of a successful copy check, and also the shape
// the model is asked to produce.
type Output struct {
	Score        Score      `json:"score"`
	Flags        []string   `json:"flags"`
	Suggestion   Suggestion `json:"suggestion"`
	Variants     []Variant  `json:"variants"`
	Explanations []string   `json:"explanations"`
}

// MaxVariants caps the alternatives returned alongside the suggestion.
const MaxVariants = 3

// Clone returns a deep copy, so cached candidates are never shared.
func (o *Output) Clone() *Output {
	if o == nil {
		return nil
	}
	c := *o
	c.Flags = append([]string{}, o.Flags...)
	c.Variants = append([]Variant{}, o.Variants...)
	c.Explanations = append([]string{}, o.Explanations...)
	return &c
}
