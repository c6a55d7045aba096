package level

import "sort"

// DefaultWeaponDamage applies to weapon ids missing from the catalog
const DefaultWeaponDamage = 15

// UnarmedDamage is used when combat starts without any weapon
const UnarmedDamage = 5

// ItemKind classifies inventory entries
type ItemKind string

const (
	KindWeapon ItemKind = "weapon"
	KindKey    ItemKind = "key"
	KindItem   ItemKind = "item"
)

// ItemInfo describes a collectible
type ItemInfo struct {
	ID          string   `json:"id"`
	Kind        ItemKind `json:"kind"`
	Color       string   `json:"color,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
}

// ObstacleInfo describes an obstacle and the item that clears it
type ObstacleInfo struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	RequiredItem string `json:"required_item"`
	Description  string `json:"description,omitempty"`
	Icon         string `json:"icon,omitempty"`
}

// WeaponInfo describes a weapon and its fixed damage
type WeaponInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Damage      int    `json:"damage"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Catalog is the single read-only lookup for enemies, obstacles, items and weapons
type Catalog struct {
	enemies   map[string]EnemyTemplate
	obstacles map[string]ObstacleInfo
	items     map[string]ItemInfo
	weapons   map[string]WeaponInfo
}

// NewCatalog builds a catalog from the given entries
func NewCatalog(enemies []EnemyTemplate, obstacles []ObstacleInfo, items []ItemInfo, weapons []WeaponInfo) *Catalog {
	c := &Catalog{
		enemies:   make(map[string]EnemyTemplate, len(enemies)),
		obstacles: make(map[string]ObstacleInfo, len(obstacles)),
		items:     make(map[string]ItemInfo, len(items)),
		weapons:   make(map[string]WeaponInfo, len(weapons)),
	}
	for _, e := range enemies {
		c.enemies[e.Type] = e
	}
	for _, o := range obstacles {
		c.obstacles[o.Type] = o
	}
	for _, i := range items {
		c.items[i.ID] = i
	}
	for _, w := range weapons {
		c.weapons[w.ID] = w
	}
	return c
}

var defaultCatalog = NewCatalog(
	[]EnemyTemplate{
		{Type: "goblin", Name: "Corridor goblin", HP: 14, Attack: 3, Description: "Quick but fragile.", Icon: "🟢"},
		{Type: "slime", Name: "Sticky slime", HP: 10, Attack: 2, Description: "Slow and sticky.", Icon: "🟣"},
		{Type: "orc", Name: "Brutal orc", HP: 20, Attack: 5, Description: "Very dangerous.", Icon: "🔴"},
	},
	[]ObstacleInfo{
		{Type: "fire", Name: "Flames", RequiredItem: "water_bucket", Description: "Flames to put out.", Icon: "🔥"},
		{Type: "rock", Name: "Boulders", RequiredItem: "pickaxe", Description: "Boulders to break.", Icon: "🪨"},
		{Type: "water", Name: "Deep water", RequiredItem: "swim_boots", Description: "Water to cross.", Icon: "💧"},
	},
	[]ItemInfo{
		{ID: "key_red", Kind: KindKey, Color: "red", Name: "Red key", Description: "Opens the red door", Icon: "🟥"},
		{ID: "key_blue", Kind: KindKey, Color: "blue", Name: "Blue key", Description: "Opens the blue door", Icon: "🟦"},
		{ID: "water_bucket", Kind: KindItem, Name: "Water bucket", Description: "Puts out fire", Icon: "🪣"},
		{ID: "pickaxe", Kind: KindItem, Name: "Pickaxe", Description: "Breaks boulders", Icon: "⛏️"},
		{ID: "swim_boots", Kind: KindItem, Name: "Swim boots", Description: "Crosses water", Icon: "🥾"},
	},
	[]WeaponInfo{
		{ID: "sword", Name: "Sword", Damage: 15, Icon: "🗡️"},
		{ID: "axe", Name: "Axe", Damage: 20, Icon: "🪓"},
		{ID: "dagger", Name: "Dagger", Damage: 10, Icon: "🔪"},
	},
)

// DefaultCatalog returns the built-in catalog shared by every level
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Enemy looks up an enemy template by monster type
func (c *Catalog) Enemy(monsterType string) (EnemyTemplate, bool) {
	e, ok := c.enemies[monsterType]
	return e, ok
}

// Obstacle looks up an obstacle by type
func (c *Catalog) Obstacle(obstacleType string) (ObstacleInfo, bool) {
	o, ok := c.obstacles[obstacleType]
	return o, ok
}

// Item looks up an item by id
func (c *Catalog) Item(id string) (ItemInfo, bool) {
	i, ok := c.items[id]
	return i, ok
}

// Weapon looks up a weapon by id
func (c *Catalog) Weapon(id string) (WeaponInfo, bool) {
	w, ok := c.weapons[id]
	return w, ok
}

// WeaponDamage returns the fixed damage of a weapon, DefaultWeaponDamage when unknown
func (c *Catalog) WeaponDamage(id string) int {
	if w, ok := c.weapons[id]; ok {
		return w.Damage
	}
	return DefaultWeaponDamage
}

// Enemies lists enemy templates sorted by type
func (c *Catalog) Enemies() []EnemyTemplate {
	out := make([]EnemyTemplate, 0, len(c.enemies))
	for _, e := range c.enemies {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Obstacles lists obstacles sorted by type
func (c *Catalog) Obstacles() []ObstacleInfo {
	out := make([]ObstacleInfo, 0, len(c.obstacles))
	for _, o := range c.obstacles {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Items lists items sorted by id
func (c *Catalog) Items() []ItemInfo {
	out := make([]ItemInfo, 0, len(c.items))
	for _, i := range c.items {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Weapons lists weapons sorted by id
func (c *Catalog) Weapons() []WeaponInfo {
	out := make([]WeaponInfo, 0, len(c.weapons))
	for _, w := range c.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
