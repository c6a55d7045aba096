// Package messages holds the player-facing text of the game: block messages,
// pickup notices and battle log lines, keyed by message id and backed by
// embedded gettext PO catalogs.
package messages

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Message keys
const (
	BlockedDoor     = "BLOCKED_DOOR"
	BlockedMonster  = "BLOCKED_MONSTER"
	BlockedObstacle = "BLOCKED_OBSTACLE"
	PickupKey       = "PICKUP_KEY"
	PickupWeapon    = "PICKUP_WEAPON"
	PickupItem      = "PICKUP_ITEM"
	BattleStart     = "BATTLE_START"
	BattlePlayerHit = "BATTLE_PLAYER_HIT"
	BattleEnemyHit  = "BATTLE_ENEMY_HIT"
	BattleVictory   = "BATTLE_VICTORY"
	BattleDefeat    = "BATTLE_DEFEAT"
	LevelComplete   = "LEVEL_COMPLETE"
	GameOver        = "GAME_OVER"
)

// DefaultLanguage is used when a requested language has no catalog
const DefaultLanguage = "en"

//go:embed locales/*.po
var locales embed.FS

// Translator renders a message key with its arguments
type Translator interface {
	Get(key string, vars ...any) string
}

// Catalog is a Translator backed by one PO file
type Catalog struct {
	lang string
	po   *gotext.Po
}

// New loads the catalog for lang, falling back to DefaultLanguage
func New(lang string) (*Catalog, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLanguage
	}
	data, err := locales.ReadFile("locales/" + lang + ".po")
	if err != nil {
		if lang == DefaultLanguage {
			return nil, fmt.Errorf("failed to read %s catalog: %w", lang, err)
		}
		return New(DefaultLanguage)
	}
	po := gotext.NewPo()
	po.Parse(data)
	return &Catalog{lang: lang, po: po}, nil
}

// MustNew is New for the embedded catalogs, which cannot fail for DefaultLanguage
func MustNew(lang string) *Catalog {
	c, err := New(lang)
	if err != nil {
		panic(err)
	}
	return c
}

// Language reports the catalog's language code
func (c *Catalog) Language() string {
	return c.lang
}

// Get returns the translated text for key formatted with vars
func (c *Catalog) Get(key string, vars ...any) string {
	return c.po.Get(key, vars...)
}

// Languages lists the embedded language codes
func Languages() []string {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return []string{DefaultLanguage}
	}
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".po"))
	}
	sort.Strings(langs)
	return langs
}
