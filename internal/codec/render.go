package codec

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mob-ledger/internal/domain"
)

// Host chat formatting codes.
const (
	colorReset  = "§r"
	colorGold   = "§6"
	colorYellow = "§e"
	colorGray   = "§7"
	colorDark   = "§8"
	colorWhite  = "§f"
)

const unnamed = "Unnamed creature"

func displayName(r *domain.Record) string {
	if r.Label == "" {
		return unnamed
	}
	return r.Label
}

func shortKind(kind string) string {
	return strings.TrimPrefix(kind, "minecraft:")
}

func splitAge(seconds int64) (h, m, s int64) {
	return seconds / 3600, (seconds % 3600) / 60, seconds % 60
}

func formatAge(seconds int64) string {
	h, m, s := splitAge(seconds)
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatLocation(l domain.Location) string {
	return fmt.Sprintf("(%d, %d, %d)", l.X, l.Y, l.Z)
}

func formatVitality(v domain.Vitality) string {
	return fmt.Sprintf("%g/%g", v.Current, v.Max)
}

func ArtifactLabel(r *domain.Record) string {
	return fmt.Sprintf("%s%s's record%s", colorGold, displayName(r), colorReset)
}

// RenderSummary is the short multi-line description of a live record.
func RenderSummary(r *domain.Record) string {
	lines := []string{
		fmt.Sprintf("%s=== %s ===%s", colorYellow, displayName(r), colorReset),
		fmt.Sprintf("%sType: %s%s", colorGray, colorWhite, shortKind(r.Kind)),
		fmt.Sprintf("%sAge: %s%s", colorGray, colorWhite, formatAge(r.AgeSeconds)),
		fmt.Sprintf("%sAffinity: %s%d/%d", colorGray, colorWhite, r.Affinity, domain.MaxAffinity),
		fmt.Sprintf("%sKills: %splayers %d | creatures %d", colorGray, colorWhite, r.Kills.Players, r.Kills.Others),
		fmt.Sprintf("%sInteractions: %sfed %d | petted %d", colorGray, colorWhite,
			r.Interactions[domain.InteractionFed], r.Interactions[domain.InteractionPetted]),
		fmt.Sprintf("%sSpawned at: %s%s %s", colorGray, colorWhite, r.Origin.Realm, formatLocation(r.Origin)),
		fmt.Sprintf("%sHealth: %s%s", colorGray, colorWhite, formatVitality(r.Vitality)),
	}
	if r.Owner != nil {
		lines = append(lines, fmt.Sprintf("%sOwner: %s%s", colorGray, colorWhite, *r.Owner))
	}
	lines = append(lines, fmt.Sprintf("%sRecorded: %s", colorDark, formatTime(r.CreatedAt)))
	return strings.Join(lines, "\n")
}

// RenderLore is the lore shown on the artifact item.
func RenderLore(r *domain.Record) []string {
	lore := []string{
		fmt.Sprintf("%s=== Creature record ===%s", colorGray, colorReset),
		fmt.Sprintf("%sType: %s%s", colorYellow, colorWhite, shortKind(r.Kind)),
		fmt.Sprintf("%sAge: %s%s", colorYellow, colorWhite, formatAge(r.AgeSeconds)),
		fmt.Sprintf("%sAffinity: %s%d/%d", colorYellow, colorWhite, r.Affinity, domain.MaxAffinity),
		fmt.Sprintf("%sKills:%s", colorYellow, colorReset),
		fmt.Sprintf("  %s- players: %s%d", colorGray, colorWhite, r.Kills.Players),
		fmt.Sprintf("  %s- creatures: %s%d", colorGray, colorWhite, r.Kills.Others),
		fmt.Sprintf("%sInteractions:%s", colorYellow, colorReset),
	}
	for _, k := range domain.InteractionKinds {
		lore = append(lore, fmt.Sprintf("  %s- %s: %s%d", colorGray, k, colorWhite, r.Interactions[k]))
	}
	lore = append(lore,
		fmt.Sprintf("%sOrigin:%s", colorYellow, colorReset),
		fmt.Sprintf("  %s- realm: %s%s", colorGray, colorWhite, r.Origin.Realm),
		fmt.Sprintf("  %s- position: %s%s", colorGray, colorWhite, formatLocation(r.Origin)),
		fmt.Sprintf("%sHealth: %s%s", colorYellow, colorWhite, formatVitality(r.Vitality)),
	)
	if r.Owner != nil {
		lore = append(lore, fmt.Sprintf("%sOwner: %s%s", colorYellow, colorWhite, *r.Owner))
	}
	lore = append(lore, fmt.Sprintf("%sRecorded: %s%s", colorDark, formatTime(r.CreatedAt), colorReset))
	return lore
}

// RenderDetailed is the full text sent to a player who inspects an artifact.
func RenderDetailed(r *domain.Record) string {
	var b strings.Builder
	h, m, _ := splitAge(r.AgeSeconds)

	fmt.Fprintf(&b, "%s=== %s: details ===%s\n\n", colorGold, displayName(r), colorReset)
	fmt.Fprintf(&b, "%sBasics:%s\n", colorYellow, colorReset)
	fmt.Fprintf(&b, "%s• Type: %s%s\n", colorGray, colorWhite, shortKind(r.Kind))
	fmt.Fprintf(&b, "%s• Lived: %s%d hours %d minutes\n", colorGray, colorWhite, h, m)
	fmt.Fprintf(&b, "%s• Affinity: %s%d/%d\n\n", colorGray, colorWhite, r.Affinity, domain.MaxAffinity)

	fmt.Fprintf(&b, "%sCombat:%s\n", colorYellow, colorReset)
	fmt.Fprintf(&b, "%s• Players killed: %s%d\n", colorGray, colorWhite, r.Kills.Players)
	fmt.Fprintf(&b, "%s• Creatures killed: %s%d\n", colorGray, colorWhite, r.Kills.Others)
	if len(r.Kills.ByKind) > 0 {
		kinds := make([]string, 0, len(r.Kills.ByKind))
		for k := range r.Kills.ByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		fmt.Fprintf(&b, "%s• By kind:\n", colorGray)
		for _, k := range kinds {
			fmt.Fprintf(&b, "%s  - %s: %s%d\n", colorDark, shortKind(k), colorWhite, r.Kills.ByKind[k])
		}
	}

	fmt.Fprintf(&b, "\n%sInteractions:%s\n", colorYellow, colorReset)
	fmt.Fprintf(&b, "%s• Fed: %s%d\n", colorGray, colorWhite, r.Interactions[domain.InteractionFed])
	fmt.Fprintf(&b, "%s• Petted: %s%d\n", colorGray, colorWhite, r.Interactions[domain.InteractionPetted])
	fmt.Fprintf(&b, "%s• Healed: %s%d\n\n", colorGray, colorWhite, r.Interactions[domain.InteractionHealed])

	fmt.Fprintf(&b, "%sOrigin:%s\n", colorYellow, colorReset)
	fmt.Fprintf(&b, "%s• Realm: %s%s\n", colorGray, colorWhite, r.Origin.Realm)
	fmt.Fprintf(&b, "%s• Position: %s%s\n\n", colorGray, colorWhite, formatLocation(r.Origin))

	fmt.Fprintf(&b, "%sHealth:%s\n", colorYellow, colorReset)
	fmt.Fprintf(&b, "%s• HP: %s%s\n\n", colorGray, colorWhite, formatVitality(r.Vitality))

	if r.Owner != nil {
		fmt.Fprintf(&b, "%sOwnership:%s\n", colorYellow, colorReset)
		fmt.Fprintf(&b, "%s• Owner: %s%s\n\n", colorGray, colorWhite, *r.Owner)
	}

	if len(r.Achievements) > 0 {
		fmt.Fprintf(&b, "%sAchievements:%s\n", colorYellow, colorReset)
		for _, a := range r.Achievements {
			fmt.Fprintf(&b, "%s• %s%s\n", colorGray, colorWhite, a)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%sRecorded: %s%s", colorDark, formatTime(r.CreatedAt), colorReset)
	return b.String()
}
