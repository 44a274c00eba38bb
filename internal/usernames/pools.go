package usernames

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

var (
	fallbackFirstNames = []string{"Arjun", "Diya", "Amit", "Priya", "Rahul", "Neha", "Kavitha", "Nitin", "Sneha", "Vikram"}
	fallbackLastNames  = []string{"Patel", "Sharma", "Singh", "Kumar", "Verma", "Gupta", "Nair", "Menon", "Reddy", "Iyer"}

	defaultNicknames = []string{
		"Appu", "Bunny", "Chintu", "Dolly", "Golu", "Happy", "Jolly", "Kittu", "Lucky", "Mickey",
		"Nikki", "Oscar", "Pinky", "Queen", "Ricky", "Sunny", "Tinku", "Usha", "Vicky", "Winnie",
		"Xena", "Yoyo", "Zara", "Aadi", "Bebo", "Chiku", "Didi", "Esha", "Fiza", "Gigi",
	}
	defaultYears       = []string{"2020", "2021", "2022", "2023", "2024", "2025"}
	defaultNumbers     = []string{"123", "456", "789", "007", "99", "88", "77", "66", "55", "44", "33", "22", "11"}
	defaultRandomChars = []string{"xyz", "abc", "def", "qwe", "asd", "zxc", "rty", "fgh", "vbn", "mkl"}
	defaultEmojis      = []string{
		"😊", "🌟", "💫", "✨", "🎉", "🎈", "🎊", "🎋", "🎍", "🎎",
		"🎏", "🎐", "🎀", "🎁", "🎂", "🎃", "🎄", "🎅", "🎆", "🎇",
	}
	defaultScripts = [][]string{
		{"अर्जुन", "दीया", "अमित", "प्रिया", "राहुल", "नेहा", "कविता", "नितिन", "स्नेहा", "विक्रम"},
		{"அருஜுன்", "தீயா", "அமித்", "பிரியா", "ராகுல்", "நேஹா", "கவிதா", "நிதின்", "ஸ்னேஹா", "விக்ரம்"},
		{"అర్జున్", "దీయా", "అమిత్", "ప్రియా", "రాహుల్", "నేహా", "కవిత", "నితిన్", "స్నేహ", "విక్రమ్"},
	}
	defaultFunkyHandles = []string{
		"Appu", "rockstar99", "miss_shy", "random123", "foodie_lover89",
		"tech_guy", "mom_of_two", "fitness_freak", "bookworm", "traveler_2025",
	}
)

// Pools are the raw material usernames are built from.
type Pools struct {
	FirstNames   []string
	LastNames    []string
	Nicknames    []string
	Years        []string
	Numbers      []string
	RandomChars  []string
	Emojis       []string
	Scripts      [][]string
	FunkyHandles []string
}

// NameSource supplies first and last name pools.
type NameSource interface {
	FirstNames() ([]string, error)
	LastNames() ([]string, error)
}

// CSVSource reads names from the first column of two CSV files with a header row.
type CSVSource struct {
	FirstFile string
	LastFile  string
}

func (s CSVSource) FirstNames() ([]string, error) { return readNames(s.FirstFile) }
func (s CSVSource) LastNames() ([]string, error)  { return readNames(s.LastFile) }

func readNames(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("no names file configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	var names []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if len(rec) == 0 {
			continue
		}
		if name := strings.TrimSpace(rec[0]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// LoadPools builds the username pools. A missing, unreadable or empty name
// list is replaced by the built-in list and logged; it is never an error.
func LoadPools(src NameSource, funkyHandles []string, logger *zap.Logger) Pools {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := DefaultPools()
	if len(funkyHandles) > 0 {
		p.FunkyHandles = funkyHandles
	}
	if src == nil {
		return p
	}

	if names, err := src.FirstNames(); err != nil || len(names) == 0 {
		logger.Warn("using built-in first names", zap.Error(err))
	} else {
		p.FirstNames = names
	}
	if names, err := src.LastNames(); err != nil || len(names) == 0 {
		logger.Warn("using built-in last names", zap.Error(err))
	} else {
		p.LastNames = names
	}
	return p
}

// DefaultPools returns the built-in pools.
func DefaultPools() Pools {
	return Pools{
		FirstNames:   fallbackFirstNames,
		LastNames:    fallbackLastNames,
		Nicknames:    defaultNicknames,
		Years:        defaultYears,
		Numbers:      defaultNumbers,
		RandomChars:  defaultRandomChars,
		Emojis:       defaultEmojis,
		Scripts:      defaultScripts,
		FunkyHandles: defaultFunkyHandles,
	}
}
