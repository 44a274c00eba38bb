package config

// Username style labels.
const (
	StyleFirstLast    = "first_last"
	StyleFirstOnly    = "first_only"
	StyleLastOnly     = "last_only"
	StyleNickname     = "nickname"
	StyleAlphanumeric = "alphanumeric"
	StyleOtherScript  = "other_script"
	StyleFunkyHandle  = "funky_handle"
)

// Length bucket labels.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Default returns the configuration the generator runs with when no file is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:           "openai",
			Model:              "gpt-4o-mini",
			Timeout:            "30s",
			ReviewMaxTokens:    100,
			ReviewTemperature:  0.9,
			RetryTemperature:   0.95,
			BenefitAnalysis:    true,
			BenefitMaxTokens:   300,
			BenefitTemperature: 0.3,
		},
		Language: LanguageConfig{
			Distribution: map[string]float64{
				"Pure English": 60,
				"Hinglish":     30,
				"Hindi Casual": 10,
			},
			Examples: map[string][]string{
				"Pure English": {
					"Used daily after bath, skin didn't feel dry even in AC rooms",
					"Quality is good, really happy with the purchase",
				},
				"Hinglish": {
					"Finally sugar free biscuit jo tasty bhi hai, mom diabetic hai so perfect",
					"Delivery fast thi, product bhi perfect condition mein aaya",
				},
				"Hindi Casual": {
					"Cap loose tha, wipes thoda dry lage baad me",
					"Quality bahut acchi hai, daily use ke liye sahi",
				},
			},
		},
		Ratings: map[int]float64{5: 50, 4: 25, 3: 20, 2: 5},
		Length: LengthConfig{
			Distribution: map[string]float64{
				LengthShort:  25,
				LengthMedium: 40,
				LengthLong:   35,
			},
			WordLimits: map[string]Range{
				LengthShort:  {Min: 5, Max: 7},
				LengthMedium: {Min: 8, Max: 14},
				LengthLong:   {Min: 15, Max: 30},
			},
			MaxSentences: 3,
		},
		Dates: DateConfig{
			Start:            "2025-09-01",
			End:              "2025-12-31",
			OrganicPacing:    true,
			HeavyDaysPercent: 30,
			HeavyDayWeight:   3,
		},
		Usernames: UsernameConfig{
			Distribution: map[string]float64{
				StyleFirstLast:    30,
				StyleFirstOnly:    20,
				StyleLastOnly:     15,
				StyleNickname:     10,
				StyleAlphanumeric: 15,
				StyleOtherScript:  5,
				StyleFunkyHandle:  5,
			},
			FunkyHandles: []string{
				"Appu", "rockstar99", "miss_shy", "random123", "foodie_lover89",
				"tech_guy", "mom_of_two", "fitness_freak", "bookworm", "traveler_2025",
			},
			FirstNamesFile: "data/indian_first_names.csv",
			LastNamesFile:  "data/indian_last_names.csv",
			MaxAttempts:    50,
		},
		Content: ContentConfig{
			ProductSpecificRatio: 70,
			EmojiPercent:         15,
			ForbiddenWords:       []string{"yaar", "dost", "bhai", "friends"},
			AllowedAbbreviations: []string{"recd", "ok-ok", "thoda", "bilkul", "accha", "sahi"},
			RepetitivePhrases: []string{
				"kaafi effective hain",
				"cravings bilkul kam ho gayi hain",
				"bahut accha hai",
				"bilkul sahi hai",
				"perfect hai",
				"recommend karunga",
				"satisfied hun",
			},
			MaxRepetitivePhrases: 2,
		},
		Quantity: QuantityConfig{
			ReviewsPerSKU:    Range{Min: 17, Max: 22},
			DiscountCategory: "FMCG",
			SKUCooldown:      "500ms",
		},
		Output: OutputConfig{
			Columns:   []string{"sku_id", "sku_name", "rating", "review", "post_date", "username"},
			Separator: "\t",
			Format:    "tsv",
		},
		Checkpoint: CheckpointConfig{
			Enabled:        true,
			Dir:            "checkpoints",
			SaveInterval:   50,
			MaxCheckpoints: 10,
		},
		Storage: StorageConfig{
			Bucket: "reviews",
			Prefix: "generated",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadMB:    10,
			RequestTimeout: "30m",
		},
	}
}
