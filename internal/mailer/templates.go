package mailer

import (
	"strings"

	"github.com/biuromax/backend/internal/i18n"
	"github.com/biuromax/backend/internal/model"
)

// fieldLine is one "Label: value" body line; Key selects the value from the
// submission data.
type fieldLine struct {
	Label string
	Key   string
}

// template is a per-form, per-language email template. Bodies are a fixed
// contract with the site copy; change them only together with the frontend.
type template struct {
	Subject string
	Intro   string
	Fields  []fieldLine
	Outro   string
}

var confirmationTemplates = map[model.FormType]map[i18n.Language]template{
	model.FormVirtualOffice: {
		i18n.English: {
			Subject: "Your virtual office inquiry",
			Intro:   "Thank you for your virtual office inquiry.",
			Fields: []fieldLine{
				{"Company name", "companyName"},
				{"Start date", "startDate"},
				{"Package", "package"},
			},
			Outro: "We will contact you soon.",
		},
		i18n.Polish: {
			Subject: "Twoje zapytanie o biuro wirtualne",
			Intro:   "Dziękujemy za zapytanie o biuro wirtualne.",
			Fields: []fieldLine{
				{"Nazwa firmy", "companyName"},
				{"Data rozpoczęcia", "startDate"},
				{"Pakiet", "package"},
			},
			Outro: "Skontaktujemy się wkrótce.",
		},
	},
	model.FormCoworking: {
		i18n.English: {
			Subject: "Your coworking inquiry",
			Intro:   "Thank you for your coworking inquiry.",
			Fields: []fieldLine{
				{"Workspace type", "workspaceType"},
				{"Start date", "startDate"},
				{"Duration", "duration"},
			},
			Outro: "We will contact you soon.",
		},
		i18n.Polish: {
			Subject: "Twoje zapytanie o coworking",
			Intro:   "Dziękujemy za zapytanie o coworking.",
			Fields: []fieldLine{
				{"Rodzaj stanowiska", "workspaceType"},
				{"Data rozpoczęcia", "startDate"},
				{"Okres", "duration"},
			},
			Outro: "Skontaktujemy się wkrótce.",
		},
	},
	model.FormMeetingRoom: {
		i18n.English: {
			Subject: "Your meeting room inquiry",
			Intro:   "Thank you for your meeting room inquiry.",
			Fields: []fieldLine{
				{"Date", "date"},
				{"Start time", "startTime"},
				{"End time", "endTime"},
				{"Attendees", "attendees"},
			},
			Outro: "We will contact you soon.",
		},
		i18n.Polish: {
			Subject: "Twoja rezerwacja sali spotkań",
			Intro:   "Dziękujemy za zapytanie o salę spotkań.",
			Fields: []fieldLine{
				{"Data", "date"},
				{"Godzina rozpoczęcia", "startTime"},
				{"Godzina zakończenia", "endTime"},
				{"Liczba uczestników", "attendees"},
			},
			Outro: "Skontaktujemy się wkrótce.",
		},
	},
	model.FormAdvertising: {
		i18n.English: {
			Subject: "Your advertising inquiry",
			Intro:   "Thank you for your advertising inquiry.",
			Fields: []fieldLine{
				{"Ad type", "adType"},
				{"Message", "message"},
			},
			Outro: "We will contact you soon.",
		},
		i18n.Polish: {
			Subject: "Twoje zapytanie o reklamę",
			Intro:   "Dziękujemy za zapytanie o reklamę.",
			Fields: []fieldLine{
				{"Rodzaj reklamy", "adType"},
				{"Wiadomość", "message"},
			},
			Outro: "Skontaktujemy się wkrótce.",
		},
	},
	model.FormSpecialDeals: {
		i18n.English: {
			Subject: "Your special deals inquiry",
			Intro:   "Thank you for your interest in our special deals.",
			Fields: []fieldLine{
				{"Deal", "deal"},
				{"Message", "message"},
			},
			Outro: "We will contact you soon.",
		},
		i18n.Polish: {
			Subject: "Twoje zapytanie o ofertę specjalną",
			Intro:   "Dziękujemy za zainteresowanie naszą ofertą specjalną.",
			Fields: []fieldLine{
				{"Oferta", "deal"},
				{"Wiadomość", "message"},
			},
			Outro: "Skontaktujemy się wkrótce.",
		},
	},
	model.FormContact: {
		i18n.English: {
			Subject: "Your message to Biuromax",
			Intro:   "Thank you for contacting us.",
			Fields: []fieldLine{
				{"Subject", "subject"},
				{"Message", "message"},
			},
			Outro: "We will contact you soon.",
		},
		i18n.Polish: {
			Subject: "Twoja wiadomość do Biuromax",
			Intro:   "Dziękujemy za kontakt.",
			Fields: []fieldLine{
				{"Temat", "subject"},
				{"Wiadomość", "message"},
			},
			Outro: "Skontaktujemy się wkrótce.",
		},
	},
}

// formLabels name each form in admin notifications.
var formLabels = map[model.FormType]map[i18n.Language]string{
	model.FormVirtualOffice: {i18n.English: "virtual office", i18n.Polish: "biuro wirtualne"},
	model.FormCoworking:     {i18n.English: "coworking", i18n.Polish: "coworking"},
	model.FormMeetingRoom:   {i18n.English: "meeting room", i18n.Polish: "sala spotkań"},
	model.FormAdvertising:   {i18n.English: "advertising", i18n.Polish: "reklama"},
	model.FormSpecialDeals:  {i18n.English: "special deals", i18n.Polish: "oferta specjalna"},
	model.FormContact:       {i18n.English: "contact", i18n.Polish: "kontakt"},
}

// contactFields are the base-schema lines prepended to admin notifications.
var contactFields = map[i18n.Language][]fieldLine{
	i18n.English: {
		{"First name", "firstName"},
		{"Last name", "lastName"},
		{"Email", "email"},
		{"Phone", "phone"},
	},
	i18n.Polish: {
		{"Imię", "firstName"},
		{"Nazwisko", "lastName"},
		{"Email", "email"},
		{"Telefon", "phone"},
	},
}

// RenderConfirmation is a pure function of (formType, data, language): the
// subject and body of the submitter confirmation email. Missing data fields
// render as empty values, never as an error.
func RenderConfirmation(ft model.FormType, data map[string]string, lang i18n.Language) (subject, body string) {
	byLang, ok := confirmationTemplates[ft]
	if !ok {
		byLang = confirmationTemplates[model.FormContact]
	}
	tpl, ok := byLang[lang]
	if !ok {
		tpl = byLang[i18n.DefaultLanguage]
	}

	var b strings.Builder
	b.WriteString(tpl.Intro)
	b.WriteString("\n\n")
	for i, f := range tpl.Fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(data[f.Key])
	}
	b.WriteString("\n\n")
	b.WriteString(tpl.Outro)
	return tpl.Subject, b.String()
}

// RenderAdminNotification renders the internal notification for a new
// submission: the base contact fields followed by the form-specific ones.
// Unsupported languages fall back to Polish, same as RenderConfirmation, so
// a replayed record with a corrupt language still renders labeled lines.
func RenderAdminNotification(ft model.FormType, data map[string]string, lang i18n.Language) (subject, body string) {
	if _, ok := contactFields[lang]; !ok {
		lang = i18n.DefaultLanguage
	}

	label := formLabels[ft][lang]
	if label == "" {
		label = string(ft)
	}

	if lang == i18n.English {
		subject = "New submission: " + label
	} else {
		subject = "Nowe zgłoszenie: " + label
	}

	byLang := confirmationTemplates[ft]
	tpl := byLang[lang]
	lines := append([]fieldLine{}, contactFields[lang]...)
	lines = append(lines, tpl.Fields...)

	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n\n")
	for i, f := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(data[f.Key])
	}
	return subject, b.String()
}
