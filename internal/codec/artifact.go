package codec

import (
	"mob-ledger/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

type Codec struct {
	nametagItem string
	logger      zerolog.Logger
}

func New(nametagItem string, logger zerolog.Logger) *Codec {
	return &Codec{
		nametagItem: nametagItem,
		logger:      logger.With().Str("component", "snapshot_codec").Logger(),
	}
}

// NewArtifact builds the nametag issued when a subject dies.
func (c *Codec) NewArtifact(r *domain.Record) domain.Artifact {
	serial, err := gonanoid.New()
	if err != nil {
		c.logger.Warn().Err(err).Str("id", r.ID).Msg("failed to generate artifact serial")
	}
	return domain.Artifact{
		ItemType: c.nametagItem,
		Label:    ArtifactLabel(r),
		Lore:     RenderLore(r),
		Properties: map[string]string{
			PropertyKey: Marshal(Encode(r)),
		},
		Serial: serial,
	}
}

// IsRecognizedArtifact reports whether a carries a well-formed snapshot. It
// inspects only the fields that identify a snapshot.
func (c *Codec) IsRecognizedArtifact(a domain.Artifact) bool {
	if a.ItemType != c.nametagItem {
		return false
	}
	raw, ok := a.Properties[PropertyKey]
	if !ok || !gjson.Valid(raw) {
		return false
	}
	if !gjson.Parse(raw).IsObject() {
		return false
	}
	fields := gjson.GetMany(raw, "id", "type")
	for _, f := range fields {
		if f.Type != gjson.String || f.Str == "" {
			return false
		}
	}
	return true
}

// ReadArtifact decodes the record carried by a. ok is false when a is not a
// recognized artifact.
func (c *Codec) ReadArtifact(a domain.Artifact) (domain.Record, bool) {
	if !c.IsRecognizedArtifact(a) {
		return domain.Record{}, false
	}
	s, ok := Unmarshal(a.Properties[PropertyKey])
	if !ok {
		c.logger.Debug().Msg("artifact snapshot failed to decode")
		return domain.Record{}, false
	}
	return Decode(s), true
}
