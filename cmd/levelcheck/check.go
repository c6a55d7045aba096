package main

import (
	"fmt"
	"sort"

	"github.com/wricardo/fliplabyrinth/game/level"
	"github.com/wricardo/fliplabyrinth/game/levels"
)

// maxPickups bounds the key/item search; larger levels only get the plain
// connectivity check
const maxPickups = 20

// Report captures the outcome of checking a single level file
type Report struct {
	File     string
	Level    *level.Descriptor
	Errors   []string
	Warnings []string
	Info     []string
}

// Valid reports whether the level loads and can be won
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) infof(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// Check decodes, validates and analyzes one level file
func Check(name string, data []byte, catalog *level.Catalog) Report {
	report := Report{File: name}

	d, err := levels.Decode(name, data)
	if err != nil {
		report.errorf("%v", err)
		return report
	}
	if err := d.Compile(catalog); err != nil {
		report.errorf("%v", err)
		return report
	}
	report.Level = d

	report.infof("Level %d: %s (%s)", d.ID, d.Name, d.Difficulty)
	report.infof("Grid: %dx%d, start %s, exit %s, max HP %d", d.Rows, d.Cols, d.Start, d.End, d.MaxHP)
	report.infof("Walls %d, monsters %d, keys %d, doors %d, weapons %d, items %d, obstacles %d",
		d.CountTiles(level.Wall), d.CountTiles(level.Monster), d.CountTiles(level.Key), d.CountTiles(level.Door),
		d.CountTiles(level.Weapon), d.CountTiles(level.Item), d.CountTiles(level.Obstacle))

	if _, ok := shortestPath(d, func(level.Tile, func(string) bool) bool { return true }, nil); !ok {
		report.errorf("Exit %s is walled off from start %s", d.End, d.Start)
		return report
	}

	analyzeCombat(d, catalog, &report)

	pickups := collectPickups(d)
	if len(pickups) > maxPickups {
		report.warnf("%d pickups, skipping key and item analysis", len(pickups))
		return report
	}

	canEnter := func(t level.Tile, holds func(string) bool) bool {
		switch t.Kind {
		case level.Door:
			return holds("key_" + t.Param)
		case level.Obstacle:
			info, _ := catalog.Obstacle(t.Param)
			return holds(info.RequiredItem)
		case level.Monster:
			return holds(anyWeapon)
		}
		return true
	}
	moves, ok := shortestPath(d, canEnter, pickups)
	if !ok {
		report.errorf("Exit %s cannot be reached with the keys, items and weapons the level provides", d.End)
		return report
	}
	report.infof("Winnable: shortest route is %d moves", moves)
	return report
}

// anyWeapon is held once any weapon has been picked up
const anyWeapon = "weapon"

type pickup struct {
	pos level.Position
	ids []string
}

func collectPickups(d *level.Descriptor) []pickup {
	var out []pickup
	for r := 0; r < d.Rows; r++ {
		for c := 0; c < d.Cols; c++ {
			pos := level.Position{Row: r, Col: c}
			t := d.TileAt(pos)
			switch t.Kind {
			case level.Key:
				out = append(out, pickup{pos, []string{"key_" + t.Param}})
			case level.Item:
				out = append(out, pickup{pos, []string{t.Param}})
			case level.Weapon:
				out = append(out, pickup{pos, []string{t.Param, anyWeapon}})
			}
		}
	}
	return out
}

type searchState struct {
	pos  level.Position
	held uint32
}

// shortestPath runs a breadth-first search from start to exit where state is
// the position plus the set of pickups collected so far. canEnter decides
// whether a non-wall tile can be stepped on with the current holdings.
func shortestPath(d *level.Descriptor, canEnter func(level.Tile, func(string) bool) bool, pickups []pickup) (int, bool) {
	index := make(map[level.Position]int, len(pickups))
	for i, p := range pickups {
		index[p.pos] = i
	}
	holdsFn := func(held uint32) func(string) bool {
		return func(id string) bool {
			for i, p := range pickups {
				if held&(1<<i) == 0 {
					continue
				}
				for _, have := range p.ids {
					if have == id {
						return true
					}
				}
			}
			return false
		}
	}

	start := searchState{pos: d.Start}
	dist := map[searchState]int{start: 0}
	queue := []searchState{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.pos == d.End {
			return dist[cur], true
		}
		for _, delta := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			next := cur.pos.Add(delta[0], delta[1])
			if !d.InBounds(next) {
				continue
			}
			t := d.TileAt(next)
			if !t.Walkable() || !canEnter(t, holdsFn(cur.held)) {
				continue
			}
			ns := searchState{pos: next, held: cur.held}
			if i, ok := index[next]; ok {
				ns.held |= 1 << i
			}
			if _, seen := dist[ns]; seen {
				continue
			}
			dist[ns] = dist[cur] + 1
			queue = append(queue, ns)
		}
	}
	return 0, false
}

// analyzeCombat estimates each fight with the weakest and strongest weapon on the map
func analyzeCombat(d *level.Descriptor, catalog *level.Catalog, report *Report) {
	monsters := map[string]bool{}
	var weaponDamage []int
	for r := 0; r < d.Rows; r++ {
		for c := 0; c < d.Cols; c++ {
			t := d.TileAt(level.Position{Row: r, Col: c})
			switch t.Kind {
			case level.Monster:
				monsters[t.Param] = true
			case level.Weapon:
				weaponDamage = append(weaponDamage, catalog.WeaponDamage(t.Param))
			}
		}
	}
	if len(monsters) == 0 {
		return
	}
	if len(weaponDamage) == 0 {
		report.warnf("Level has monsters but no weapons")
		return
	}
	sort.Ints(weaponDamage)
	weakest, strongest := weaponDamage[0], weaponDamage[len(weaponDamage)-1]

	types := make([]string, 0, len(monsters))
	for m := range monsters {
		types = append(types, m)
	}
	sort.Strings(types)

	for _, m := range types {
		enemy, _ := d.Enemy(m, catalog)
		worst := FightCost(enemy, weakest)
		best := FightCost(enemy, strongest)
		report.infof("Fight %s (%d HP, %d attack): costs %d-%d HP", enemy.Name, enemy.HP, enemy.Attack, best, worst)
		if best >= d.MaxHP {
			report.warnf("%s cannot be beaten with %d max HP", enemy.Name, d.MaxHP)
		}
	}
}

// FightCost is the HP a player loses beating enemy with the given damage.
// The player strikes first; the enemy answers every blow that does not kill it.
func FightCost(enemy level.EnemyTemplate, damage int) int {
	if damage <= 0 {
		return enemy.Attack * enemy.HP
	}
	hits := (enemy.HP + damage - 1) / damage
	return (hits - 1) * enemy.Attack
}
