package main

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/pagination"
	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"github.com/charmbracelet/lipgloss"
)

const (
	cardWidth   = 34
	cardsPerRow = 3
	statBarMax  = 255
	statBarLen  = 12
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(cardWidth)
	nameStyle   = lipgloss.NewStyle().Bold(true)
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	typeColors = map[string]string{
		"normal": "250", "fire": "202", "water": "33", "electric": "220",
		"grass": "70", "ice": "87", "fighting": "160", "poison": "128",
		"ground": "179", "flying": "111", "psychic": "205", "bug": "106",
		"rock": "137", "ghost": "61", "dragon": "57", "dark": "240",
		"steel": "247", "fairy": "218",
	}
)

var statLabels = map[pokemon.StatName]string{
	pokemon.StatHP:             "HP",
	pokemon.StatAttack:         "Atk",
	pokemon.StatDefense:        "Def",
	pokemon.StatSpecialAttack:  "SpA",
	pokemon.StatSpecialDefense: "SpD",
	pokemon.StatSpeed:          "Spe",
}

func typeBadge(t string) string {
	color, ok := typeColors[t]
	if !ok {
		color = "250"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(pokemon.Capitalize(t))
}

func statBar(v int) string {
	filled := min(v*statBarLen/statBarMax, statBarLen)
	if v > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", statBarLen-filled)
}

// renderCard draws one Pokémon. Missing stats show as "-".
func renderCard(p *pokemon.Pokemon) string {
	var b strings.Builder
	b.WriteString(nameStyle.Render(p.DisplayName()))
	b.WriteString(" ")
	b.WriteString(idStyle.Render(p.DisplayID()))
	b.WriteString("\n")

	badges := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		badges = append(badges, typeBadge(t))
	}
	b.WriteString(strings.Join(badges, " "))
	b.WriteString("\n")

	abilities := make([]string, 0, len(p.Abilities))
	for _, a := range p.Abilities {
		abilities = append(abilities, pokemon.Capitalize(a))
	}
	b.WriteString(labelStyle.Render("Abilities: "))
	b.WriteString(strings.Join(abilities, ", "))

	for _, s := range p.OrderedStats() {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-4s", statLabels[s.Name])))
		if !s.Known {
			b.WriteString(fmt.Sprintf("%4s", "-"))
			continue
		}
		b.WriteString(fmt.Sprintf("%4d %s", s.Value, statBar(s.Value)))
	}
	return cardStyle.Render(b.String())
}

// renderPage lays the cards out in rows.
func renderPage(records []*pokemon.Pokemon) string {
	rows := make([]string, 0, (len(records)+cardsPerRow-1)/cardsPerRow)
	for start := 0; start < len(records); start += cardsPerRow {
		end := min(start+cardsPerRow, len(records))
		cards := make([]string, 0, end-start)
		for _, p := range records[start:end] {
			cards = append(cards, renderCard(p))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderNotice(n *pagination.Notice) string {
	if n == nil {
		return ""
	}
	if n.Severity == pagination.SeverityError {
		return errorStyle.Render(n.Message)
	}
	return infoStyle.Render(n.Message)
}

func renderFooter(shown int, hasMore bool) string {
	if hasMore {
		return footerStyle.Render(fmt.Sprintf("%d shown, more available (use --pages)", shown))
	}
	return footerStyle.Render(fmt.Sprintf("%d shown, end of results", shown))
}
