package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/cardrun/internal/entity"
	"github.com/samdwyer/cardrun/internal/session"
	"github.com/samdwyer/cardrun/internal/world"
)

const (
	panelHeight = 8 // Rows reserved below the map
	barWidth    = 10
	logLines    = 6
)

var (
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleWarning = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// ============================================================================
// Map
// ============================================================================

// MapView is what the map screen shows.
type MapView struct {
	State   *session.State
	Moves   []*world.Node // Numbered 1..9 on screen
	Message string
	Warning string
}

// RenderMap draws the graph, the held territory and the numbered moves.
func (r *Renderer) RenderMap(v MapView) {
	r.screen.Clear()
	width, height := r.screen.Size()
	mapHeight := max(height-panelHeight, 3)

	project := projection(v.State.Graph, width, mapHeight)

	for _, e := range v.State.Graph.Edges {
		x1, y1 := project(v.State.Graph.Node(e.From))
		x2, y2 := project(v.State.Graph.Node(e.To))
		r.drawLine(x1, y1, x2, y2)
	}

	for _, n := range v.State.Graph.Nodes {
		x, y := project(n)
		glyph, style := nodeGlyph(v.State, n)
		r.screen.SetContent(x, y, glyph, style)
	}

	for i, n := range v.Moves {
		if i >= 9 {
			break
		}
		x, y := project(n)
		r.screen.SetContent(x+1, y, rune('1'+i), styleHint)
	}

	r.drawMapPanel(v, mapHeight)
	r.screen.Show()
}

// projection scales node positions onto a width x height area with a one
// cell border.
func projection(g *world.Graph, width, height int) func(*world.Node) (int, int) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	spanX, spanY := math.Max(maxX-minX, 1), math.Max(maxY-minY, 1)
	usableX, usableY := float64(max(width-4, 1)), float64(max(height-2, 1))

	return func(n *world.Node) (int, int) {
		x := 1 + int(math.Round((n.X-minX)/spanX*usableX))
		y := 1 + int(math.Round((n.Y-minY)/spanY*usableY))
		return x, y
	}
}

func (r *Renderer) drawLine(x1, y1, x2, y2 int) {
	dx, dy := x2-x1, y2-y1
	steps := max(abs(dx), abs(dy))
	for i := 1; i < steps; i++ {
		x := x1 + int(math.Round(float64(dx*i)/float64(steps)))
		y := y1 + int(math.Round(float64(dy*i)/float64(steps)))
		r.screen.SetContent(x, y, '·', styleDim)
	}
}

func nodeGlyph(s *session.State, n *world.Node) (rune, tcell.Style) {
	switch {
	case n.ID == s.Player.ID:
		return '@', tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case n.IsFinish:
		return 'F', tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	case n.IsShop:
		return '$', tcell.StyleDefault.Foreground(tcell.ColorGold)
	case s.IsHeld(n.ID):
		return '#', tcell.StyleDefault.Foreground(tcell.ColorRed)
	case n.IsStart:
		return 'S', tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case n.NeedsBattle():
		return tierGlyph(n.Tier)
	case n.IsBattle:
		return '+', styleDim
	default:
		return 'o', styleText
	}
}

func tierGlyph(t world.Tier) (rune, tcell.Style) {
	switch t {
	case world.TierStrong:
		return 'X', tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	case world.TierMedium:
		return 'm', tcell.StyleDefault.Foreground(tcell.ColorOrange)
	default:
		return 'w', tcell.StyleDefault.Foreground(tcell.ColorSilver)
	}
}

func (r *Renderer) drawMapPanel(v MapView, top int) {
	s := v.State
	y := top
	r.screen.DrawText(0, y, fmt.Sprintf("Gold %d   Moves %d   Held %d   Won %d battles",
		s.Gold, s.Moves, s.HeldCount(), s.Stats.BattlesWon), styleTitle)
	y++

	var moves []string
	for i, n := range v.Moves {
		if i >= 9 {
			break
		}
		moves = append(moves, fmt.Sprintf("%d:%s", i+1, describeNode(s, n)))
	}
	r.screen.DrawText(0, y, strings.Join(moves, "  "), styleHint)
	y++

	if v.Warning != "" {
		r.screen.DrawText(0, y, v.Warning, styleWarning)
		y++
	}
	if v.Message != "" {
		r.screen.DrawText(0, y, v.Message, styleText)
		y++
	}
	r.screen.DrawText(0, y, "1-9 move   d deck   q quit", styleDim)
}

func describeNode(s *session.State, n *world.Node) string {
	var label string
	switch {
	case n.IsFinish:
		label = "finish"
	case n.IsShop:
		label = "shop"
	case n.NeedsBattle():
		label = n.Tier.String()
	case n.IsBattle:
		label = "cleared"
	default:
		label = "empty"
	}
	if s.IsHeld(n.ID) {
		label += "!"
	}
	return label
}

// ============================================================================
// Battle
// ============================================================================

// BattleView is what the battle screen shows.
type BattleView struct {
	Players   entity.Roster
	Opponents entity.Roster
	Actor     *entity.Unit // Highlighted unit, nil between turns
	Log       []string
	Prompt    string
}

// RenderBattle draws both rosters, the recent log and the prompt.
func (r *Renderer) RenderBattle(v BattleView) {
	r.screen.Clear()
	width, height := r.screen.Size()
	half := width / 2

	r.screen.DrawText(1, 0, "YOUR CARDS", styleTitle)
	r.screen.DrawText(half+1, 0, "OPPONENTS", styleTitle)
	r.drawRoster(1, 2, v.Players, v.Actor)
	r.drawRoster(half+1, 2, v.Opponents, v.Actor)

	logTop := max(height-logLines-2, 8)
	start := max(len(v.Log)-logLines, 0)
	for i, line := range v.Log[start:] {
		r.screen.DrawText(1, logTop+i, line, styleText)
	}
	r.screen.DrawText(1, height-1, v.Prompt, styleHint)
	r.screen.Show()
}

func (r *Renderer) drawRoster(x, y int, roster entity.Roster, actor *entity.Unit) {
	for i, u := range roster {
		row := y + i*2
		marker := ' '
		if u == actor {
			marker = '>'
		}
		r.screen.SetContent(x, row, marker, styleTitle)

		nameStyle := tcell.StyleDefault.Foreground(u.Card.TCellColor())
		if !u.IsAlive() {
			nameStyle = styleDim
		}
		r.screen.DrawText(x+2, row, fmt.Sprintf("%d %s", i+1, u.Name()), nameStyle)

		status := fmt.Sprintf("%s %3d/%-3d", healthBar(u), u.HP, u.MaxHP())
		if u.Shield > 0 {
			status += fmt.Sprintf(" [%d]", u.Shield)
		}
		if !u.IsAlive() {
			status = "defeated"
		}
		r.screen.DrawText(x+4, row+1, status, styleText)
	}
}

func healthBar(u *entity.Unit) string {
	filled := int(math.Ceil(u.HealthRatio() * barWidth))
	filled = min(max(filled, 0), barWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// ============================================================================
// Shop and summary
// ============================================================================

// ShopSlot is one upgradeable deck card.
type ShopSlot struct {
	Name  string
	Level int
	Cost  int
}

// ShopView is what the shop screen shows.
type ShopView struct {
	Gold    int
	Slots   []ShopSlot
	Message string
}

// RenderShop lists upgrade offers for each deck slot.
func (r *Renderer) RenderShop(v ShopView) {
	r.screen.Clear()
	r.screen.DrawText(1, 0, "SHOP", styleTitle)
	r.screen.DrawText(1, 1, fmt.Sprintf("Gold: %d", v.Gold), styleText)

	for i, slot := range v.Slots {
		style := styleText
		if slot.Cost > v.Gold {
			style = styleDim
		}
		r.screen.DrawText(1, 3+i, fmt.Sprintf("%d  %-16s level %d   next %d gold",
			i+1, slot.Name, slot.Level, slot.Cost), style)
	}

	_, height := r.screen.Size()
	if v.Message != "" {
		r.screen.DrawText(1, height-2, v.Message, styleText)
	}
	r.screen.DrawText(1, height-1, "1-5 upgrade   esc leave", styleDim)
	r.screen.Show()
}

// RenderLines draws a titled list of lines, used for deck and summary screens.
func (r *Renderer) RenderLines(title string, lines []string, footer string) {
	r.screen.Clear()
	r.screen.DrawText(1, 0, title, styleTitle)
	for i, line := range lines {
		r.screen.DrawText(1, 2+i, line, styleText)
	}
	_, height := r.screen.Size()
	r.screen.DrawText(1, height-1, footer, styleDim)
	r.screen.Show()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
