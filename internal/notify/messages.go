package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"donationhub/internal/domain"
)

// Kind identifies a message template.
type Kind string

const (
	// KindPoolAssigned args: amount, pool name.
	KindPoolAssigned Kind = "pool_assigned"
	// KindMemberAdded args: contributor name, pool name.
	KindMemberAdded Kind = "member_added"
	// KindDonationConfirmed args: amount, pool name.
	KindDonationConfirmed Kind = "donation_confirmed"
	// KindDonationConfirmedDirect args: amount.
	KindDonationConfirmedDirect Kind = "donation_confirmed_direct"
	// KindDonationRejected args: amount.
	KindDonationRejected Kind = "donation_rejected"
	// KindAutoApproved args: contributor name, amount.
	KindAutoApproved Kind = "auto_approved"
	// KindPoolOverTarget args: pool name, current, target.
	KindPoolOverTarget Kind = "pool_over_target"
	// KindPoolCorrected args: pool name, before, after.
	KindPoolCorrected Kind = "pool_corrected"
)

// Message is a typed notification rendered per recipient locale.
type Message struct {
	Kind     Kind
	Category domain.NotificationCategory
	Args     []any
}

var supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(supported)

var templates = map[Kind]map[language.Tag]string{
	KindPoolAssigned: {
		language.English:    "Your donation of %s is assigned to pool %q, pending confirmation.",
		language.Indonesian: "Donasi Anda sebesar %s dialokasikan ke pool %q, menunggu konfirmasi.",
	},
	KindMemberAdded: {
		language.English:    "%s was added to pool %q.",
		language.Indonesian: "%s telah ditambahkan ke pool %q.",
	},
	KindDonationConfirmed: {
		language.English:    "Your donation of %s is confirmed for pool %q.",
		language.Indonesian: "Donasi Anda sebesar %s telah dikonfirmasi untuk pool %q.",
	},
	KindDonationConfirmedDirect: {
		language.English:    "Your donation of %s is confirmed.",
		language.Indonesian: "Donasi Anda sebesar %s telah dikonfirmasi.",
	},
	KindDonationRejected: {
		language.English:    "Your donation of %s was rejected.",
		language.Indonesian: "Donasi Anda sebesar %s ditolak.",
	},
	KindAutoApproved: {
		language.English:    "A gateway donation from %s of %s was approved automatically.",
		language.Indonesian: "Donasi gateway dari %s sebesar %s disetujui secara otomatis.",
	},
	KindPoolOverTarget: {
		language.English:    "Pool %q is over target: %s of %s.",
		language.Indonesian: "Pool %q melebihi target: %s dari %s.",
	},
	KindPoolCorrected: {
		language.English:    "Pool %q total corrected from %s to %s.",
		language.Indonesian: "Total pool %q dikoreksi dari %s menjadi %s.",
	},
}

var catalogue = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for kind, byLang := range templates {
		for tag, text := range byLang {
			if err := b.SetString(tag, string(kind), text); err != nil {
				panic(err)
			}
		}
	}
	return b
}()

// MatchLocale maps a locale hint such as "id-ID" or "en" to a supported tag.
func MatchLocale(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	_, idx, _ := matcher.Match(language.Make(locale))
	return supported[idx]
}

// Render formats msg in the given locale.
func Render(locale string, msg Message) string {
	p := message.NewPrinter(MatchLocale(locale), message.Catalog(catalogue))
	return p.Sprintf(string(msg.Kind), msg.Args...)
}
