package person

import "strings"

// MaxAvatarURLLength bounds avatar values sent to the backend. Longer values
// are almost always inlined image data.
const MaxAvatarURLLength = 2048

// Payload is the backend's flat write format used by create and update. The
// nested data and rels are carried alongside the flat fields.
type Payload struct {
	ID              string `json:"id,omitempty"`
	ObjectID        string `json:"_id,omitempty"`
	PersonName      string `json:"personname"`
	BirthDate       string `json:"birthdate,omitempty"`
	Gender          string `json:"gender,omitempty"`
	CurrentLocation string `json:"currentlocation,omitempty"`
	FatherID        string `json:"fatherid,omitempty"`
	MotherID        string `json:"motherid,omitempty"`
	SpouseID        string `json:"spouseid,omitempty"`
	WorksAt         string `json:"worksat,omitempty"`
	NativePlace     string `json:"nativeplace,omitempty"`
	Phone           string `json:"phone,omitempty"`
	MailID          string `json:"mail_id,omitempty"`
	Living          *bool  `json:"living,omitempty"`
	Avatar          string `json:"avatar,omitempty"`
	Data            *Data  `json:"data,omitempty"`
	Rels            *Rels  `json:"rels,omitempty"`
}

// Identifier returns the payload id, preferring "id" over "_id".
func (pl Payload) Identifier() string {
	if pl.ID != "" {
		return pl.ID
	}
	return pl.ObjectID
}

// SanitizeAvatar clears inline data URIs and over-long avatar values. It
// reports whether the avatar was changed.
func SanitizeAvatar(p Person) (Person, bool) {
	a := strings.TrimSpace(p.Data.Avatar)
	if a == "" {
		return p, false
	}
	if strings.HasPrefix(strings.ToLower(a), "data:") || len(a) > MaxAvatarURLLength {
		c := Clone(p)
		c.Data.Avatar = ""
		return c, true
	}
	return p, false
}

// ToPayload converts p to the flat write format. Temporary ids never leave
// the client: they are omitted from the id field and from every reference.
func ToPayload(p Person) Payload {
	p, _ = SanitizeAvatar(p)
	p = stripTemporary(p)

	pl := Payload{
		ID:              p.ID,
		PersonName:      strings.TrimSpace(p.Data.FirstName + " " + p.Data.LastName),
		BirthDate:       p.Data.Birthday,
		Gender:          string(p.Data.Gender),
		CurrentLocation: p.Data.Location,
		FatherID:        p.Rels.Father,
		MotherID:        p.Rels.Mother,
		WorksAt:         p.Data.Work,
		NativePlace:     p.Data.NativePlace,
		Phone:           p.Data.Contact.Phone,
		MailID:          p.Data.Contact.Email,
		Living:          p.Data.Living,
		Avatar:          p.Data.Avatar,
	}
	if len(p.Rels.Spouses) > 0 {
		pl.SpouseID = p.Rels.Spouses[0]
	}
	data, rels := p.Data, p.Rels
	pl.Data, pl.Rels = &data, &rels
	return pl
}

func stripTemporary(p Person) Person {
	c := Clone(p)
	if IsTemporary(c.ID) {
		c.ID = ""
	}
	if IsTemporary(c.Rels.Father) {
		c.Rels.Father = ""
	}
	if IsTemporary(c.Rels.Mother) {
		c.Rels.Mother = ""
	}
	c.Rels.Spouses = dropTemporary(c.Rels.Spouses)
	c.Rels.Children = dropTemporary(c.Rels.Children)
	return c
}

func dropTemporary(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if !IsTemporary(id) {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FromPayload converts a backend response back to a Person.
//
// The flat fields win over the embedded data and rels. The name splits at the
// first space. The flat spouse id becomes the first spouse, followed by the
// remaining spouses of the local copy. Children always come from the local
// copy, since the flat format cannot express them.
func FromPayload(pl Payload, local *Person) Person {
	var p Person
	switch {
	case pl.Data != nil:
		p.Data = *pl.Data
	case local != nil:
		p.Data = Clone(*local).Data
	}
	if pl.Rels != nil {
		p.Rels = Rels{
			Father:  pl.Rels.Father,
			Mother:  pl.Rels.Mother,
			Spouses: append([]string(nil), pl.Rels.Spouses...),
		}
	} else if local != nil {
		p.Rels = Rels{
			Father:  local.Rels.Father,
			Mother:  local.Rels.Mother,
			Spouses: append([]string(nil), local.Rels.Spouses...),
		}
	}

	p.ID = pl.Identifier()
	if p.ID == "" && local != nil {
		p.ID = local.ID
	}

	if pl.PersonName != "" {
		p.Data.FirstName, p.Data.LastName = SplitName(pl.PersonName)
	}
	overlay(&p.Data.Birthday, pl.BirthDate)
	overlay((*string)(&p.Data.Gender), pl.Gender)
	overlay(&p.Data.Location, pl.CurrentLocation)
	overlay(&p.Data.Work, pl.WorksAt)
	overlay(&p.Data.NativePlace, pl.NativePlace)
	overlay(&p.Data.Contact.Phone, pl.Phone)
	overlay(&p.Data.Contact.Email, pl.MailID)
	overlay(&p.Data.Avatar, pl.Avatar)
	if pl.Living != nil {
		v := *pl.Living
		p.Data.Living = &v
	}

	overlay(&p.Rels.Father, pl.FatherID)
	overlay(&p.Rels.Mother, pl.MotherID)
	if pl.SpouseID != "" {
		spouses := []string{pl.SpouseID}
		if local != nil {
			for _, s := range local.Rels.Spouses {
				if s != pl.SpouseID {
					spouses = append(spouses, s)
				}
			}
		}
		p.Rels.Spouses = spouses
	}

	if local != nil {
		p.Rels.Children = append([]string(nil), local.Rels.Children...)
	}
	return Normalize(p)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
