package web

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/rpg-sheets/internal/clients/external"
	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-sheets/internal/orchestrators/sheet"
)

var title = cases.Title(language.English)

// htmlWriter keeps the first write error so components can write without
// checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes s escaped
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// rawf formats into the page. String arguments must already be escaped.
func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) child(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

var esc = templ.EscapeString[string]

func layout(pageTitle string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(pageTitle)
		h.raw(`</title></head><body><nav><a href="/">Characters</a> <a href="/reference/classes">Classes</a></nav><main>`)
		h.child(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

func errorMessage(message string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<p class="error">`)
		h.text(message)
		h.raw(`</p>`)
	})
}

func rosterList(characters []*dnd5e.Character) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<h1>Characters</h1><ul>`)
		for _, c := range characters {
			h.rawf(`<li><a href="/characters/%s">%s</a> %s %s</li>`,
				esc(c.ID), esc(c.Name), esc(c.Ancestry), esc(classSummary(c.Classes)))
		}
		h.raw(`</ul>`)
	})
}

func classSummary(classes []dnd5e.ClassLevel) string {
	parts := make([]string, 0, len(classes))
	for _, cl := range classes {
		parts = append(parts, fmt.Sprintf("%s %d", title.String(cl.Class), cl.Level))
	}
	return strings.Join(parts, " / ")
}

// keyName turns an SRD key like "sleight-of-hand" into "Sleight Of Hand"
func keyName(key string) string {
	return title.String(strings.ReplaceAll(key, "-", " "))
}

func signed(n int) string {
	return fmt.Sprintf("%+d", n)
}

// actionButton renders a one button form posting action with hidden fields
// given as name, value pairs.
func actionButton(h *htmlWriter, target string, action sheet.Action, label string, fields ...string) {
	h.rawf(`<form method="post" action="%s" class="inline"><input type="hidden" name="action" value="%s">`,
		esc(target), esc(string(action)))
	for i := 0; i+1 < len(fields); i += 2 {
		h.rawf(`<input type="hidden" name="%s" value="%s">`, esc(fields[i]), esc(fields[i+1]))
	}
	h.rawf(`<button type="submit">%s</button></form>`, esc(label))
}

// amountForm renders a form with a number input named amount
func amountForm(h *htmlWriter, target string, action sheet.Action, label string, fields ...string) {
	h.rawf(`<form method="post" action="%s" class="inline"><input type="hidden" name="action" value="%s">`,
		esc(target), esc(string(action)))
	for i := 0; i+1 < len(fields); i += 2 {
		h.rawf(`<input type="hidden" name="%s" value="%s">`, esc(fields[i]), esc(fields[i+1]))
	}
	h.rawf(`<input type="number" name="amount" min="1" required><button type="submit">%s</button></form>`, esc(label))
}

func sheetPage(s *sheet.Sheet, links sheetLinks) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		c, stats := s.Character, s.Stats

		h.rawf(`<h1>%s</h1><p>%s, level %d `, esc(c.Name), esc(c.Ancestry), stats.Level)
		for i, cl := range stats.Classes {
			if i > 0 {
				h.raw(" / ")
			}
			h.rawf(`<a href="/reference/classes/%s">%s</a> %d`, esc(cl.Class), esc(title.String(cl.Class)), cl.Level)
			if cl.Subclass != "" {
				h.rawf(` (%s)`, esc(keyName(cl.Subclass)))
			}
		}
		h.rawf(`</p><p>Proficiency bonus %s</p>`, signed(stats.ProficiencyBonus))

		writeAbilities(h, s)
		writeSkills(h, s)

		h.rawf(`<section id="defense"><p>AC %d, speed %d ft, initiative %s, passive perception %d</p></section>`,
			stats.ArmorClass, stats.Speed, signed(stats.Initiative), stats.PassivePerception)

		writeHitPoints(h, s, links)
		writeAttacks(h, s, links)
		writeSpellSlots(h, s, links)
		writeResources(h, s, links)
		writeRest(h, s, links)

		if links.Share != "" {
			h.rawf(`<form method="post" action="%s"><button type="submit">Share at a table</button></form>`, esc(links.Share))
		}
		if links.Undo != "" {
			h.rawf(`<form method="post" action="%s"><button type="submit">Undo</button></form>`, esc(links.Undo))
		}
		if links.Events != "" {
			h.rawf(`<div id="table-events" data-src="%s"></div>`, esc(links.Events))
			h.raw(`<script>new EventSource(document.getElementById("table-events").dataset.src).addEventListener("change", () => location.reload())</script>`)
		}
	})
}

func writeAbilities(h *htmlWriter, s *sheet.Sheet) {
	h.raw(`<section id="abilities"><table><tr><th>Ability</th><th>Score</th><th>Mod</th><th>Save</th></tr>`)
	for _, a := range dnd5e.Abilities {
		h.rawf(`<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
			esc(strings.ToUpper(string(a))), s.Character.Scores[a],
			signed(s.Stats.Modifiers[a]), signed(s.Stats.Saves[a]))
	}
	h.raw(`</table></section>`)
}

func writeSkills(h *htmlWriter, s *sheet.Sheet) {
	h.raw(`<section id="skills"><ul>`)
	for _, sk := range dnd5e.Skills {
		h.rawf(`<li>%s %s</li>`, esc(keyName(string(sk))), signed(s.Stats.Skills[sk]))
	}
	h.raw(`</ul></section>`)
}

func writeHitPoints(h *htmlWriter, s *sheet.Sheet, links sheetLinks) {
	h.rawf(`<section id="hit-points"><h2>Hit points</h2><p><span class="current">%d</span> / <span class="max">%d</span>`,
		s.HitPoints, s.MaxHitPoints)
	if s.MaxHitPointsOverridden {
		h.rawf(` (rolled max %d)`, s.Stats.MaxHitPoints)
	}
	h.raw(`</p>`)

	amountForm(h, links.Action, sheet.ActionDamage, "Damage")
	amountForm(h, links.Action, sheet.ActionHeal, "Heal")
	amountForm(h, links.Action, sheet.ActionSetMaxHP, "Set max")
	if s.MaxHitPointsOverridden {
		actionButton(h, links.Action, sheet.ActionClearMaxHP, "Clear max")
	}

	h.rawf(`<p>Hit dice <span class="hit-dice">%s</span> of %s</p>`,
		esc(s.HitDiceRemaining.String()), esc(s.Stats.HitDice.String()))
	for _, t := range s.HitDiceRemaining.Terms() {
		faces := strconv.Itoa(t.Faces)
		actionButton(h, links.Action, sheet.ActionSpendHitDie, "Spend d"+faces, "faces", faces)
	}
	h.raw(`</section>`)
}

func writeAttacks(h *htmlWriter, s *sheet.Sheet, links sheetLinks) {
	if len(s.Stats.Attacks) == 0 {
		return
	}

	h.raw(`<section id="attacks"><h2>Attacks</h2><table><tr><th>Name</th><th>To hit</th><th>Damage</th><th>Crit</th><th></th></tr>`)
	for i, a := range s.Stats.Attacks {
		roll := links.Roll + strconv.Itoa(i) + "/roll"
		critQuery := "crit=1"
		if links.Query != "" {
			roll += "?" + links.Query
			critQuery = "&" + critQuery
		} else {
			critQuery = "?" + critQuery
		}
		h.rawf(`<tr><td>%s</td><td>%s</td><td>%s %s</td><td>%s</td><td><a href="%s">Roll</a> <a href="%s">Crit</a></td></tr>`,
			esc(a.Name), signed(a.ToHit), esc(a.Damage.String()), esc(a.DamageType),
			esc(a.CritDamage.String()), esc(roll), esc(roll+critQuery))
		if a.Notes != "" {
			h.rawf(`<tr><td colspan="5">%s</td></tr>`, esc(a.Notes))
		}
	}
	h.raw(`</table>`)

	h.rawf(`<form method="post" action="%s"><input type="hidden" name="action" value="%s"><select name="roll_mode">`,
		esc(links.Action), esc(string(sheet.ActionSetRollMode)))
	for _, mode := range []sheet.RollMode{sheet.RollModeDice, sheet.RollModeAverage} {
		selected := ""
		if mode == s.RollMode {
			selected = " selected"
		}
		h.rawf(`<option value="%s"%s>%s</option>`, esc(string(mode)), selected, esc(title.String(string(mode))))
	}
	h.raw(`</select><button type="submit">Set roll mode</button></form></section>`)
}

func writeSpellSlots(h *htmlWriter, s *sheet.Sheet, links sheetLinks) {
	if len(s.SpellSlots) == 0 {
		return
	}

	h.raw(`<section id="spell-slots"><h2>Spell slots</h2><ul>`)
	for _, slot := range s.SpellSlots {
		level := strconv.Itoa(slot.Level)
		h.rawf(`<li>Level %d: %d / %d `, slot.Level, slot.Remaining(), slot.Max)
		if slot.Remaining() > 0 {
			actionButton(h, links.Action, sheet.ActionSpendSlot, "Spend", "level", level)
		}
		if slot.Spent > 0 {
			actionButton(h, links.Action, sheet.ActionRestoreSlot, "Restore", "level", level)
		}
		h.raw(`</li>`)
	}
	h.raw(`</ul></section>`)
}

func writeResources(h *htmlWriter, s *sheet.Sheet, links sheetLinks) {
	if len(s.Resources) == 0 {
		return
	}

	h.raw(`<section id="resources"><h2>Resources</h2><ul>`)
	for _, r := range s.Resources {
		h.rawf(`<li id="%s">%s `, esc(r.ID), esc(r.Name))
		switch r.Kind {
		case dnd5e.ResourceCounter:
			for i := range r.Max {
				box := "☐"
				if i < r.Used {
					box = "☑"
				}
				actionButton(h, links.Action, sheet.ActionToggle, box, "resource", r.ID, "index", strconv.Itoa(i))
			}
		case dnd5e.ResourcePool:
			h.rawf(`%d / %d `, r.Remaining(), r.Max)
			amountForm(h, links.Action, sheet.ActionIncrement, "Spend", "resource", r.ID)
			amountForm(h, links.Action, sheet.ActionDecrement, "Restore", "resource", r.ID)
		}
		h.rawf(` <small>resets on a %s rest</small></li>`, esc(string(r.Reset)))
	}
	h.raw(`</ul></section>`)
}

func writeRest(h *htmlWriter, _ *sheet.Sheet, links sheetLinks) {
	h.raw(`<section id="rest">`)
	actionButton(h, links.Action, sheet.ActionShortRest, "Short rest")
	actionButton(h, links.Action, sheet.ActionLongRest, "Long rest")
	h.raw(`</section>`)
}

func classList(classes []*external.ClassSummary) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<h1>Classes</h1><ul>`)
		for _, c := range classes {
			h.rawf(`<li><a href="/reference/classes/%s">%s</a></li>`, esc(c.Key), esc(c.Name))
		}
		h.raw(`</ul>`)
	})
}

func classDetail(c *external.ClassData) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.rawf(`<h1>%s</h1><p>Hit die d%d</p>`, esc(c.Name), c.HitDie)
		h.rawf(`<p>Saving throws: %s</p>`, esc(strings.Join(c.SavingThrows, ", ")))
		if len(c.ArmorProficiencies) > 0 {
			h.rawf(`<p>Armor: %s</p>`, esc(strings.Join(c.ArmorProficiencies, ", ")))
		}
		if len(c.WeaponProficiencies) > 0 {
			h.rawf(`<p>Weapons: %s</p>`, esc(strings.Join(c.WeaponProficiencies, ", ")))
		}
		if len(c.ToolProficiencies) > 0 {
			h.rawf(`<p>Tools: %s</p>`, esc(strings.Join(c.ToolProficiencies, ", ")))
		}
		if c.SpellSlotsLevel1 > 0 {
			h.rawf(`<p>1st level spell slots at level 1: %d</p>`, c.SpellSlotsLevel1)
		}
		h.raw(`<h2>Level 1 features</h2><ul>`)
		for _, f := range c.Features {
			h.rawf(`<li><a href="/reference/features/%s">%s</a></li>`, esc(f.Key), esc(f.Name))
		}
		h.raw(`</ul>`)
	})
}

func featureDetail(f *external.FeatureData) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.rawf(`<h1>%s</h1><p>Level %d`, esc(f.Name), f.Level)
		if f.ClassKey != "" {
			h.rawf(` <a href="/reference/classes/%s">%s</a>`, esc(f.ClassKey), esc(f.ClassName))
		}
		h.raw(`</p>`)
		if f.HasChoices {
			h.raw(`<p>Has options to choose from.</p>`)
		}
	})
}
