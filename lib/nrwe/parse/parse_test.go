package parse

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFromString(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func firstMaindiv(t *testing.T, markup string) *goquery.Selection {
	t.Helper()
	return docFromString(t, markup).Find("div.maindiv").First()
}

const metaDiv = `<div class="maindiv">
	<div class="feldbezeichnung">Datum:</div>
	<div class="feldinhalt">03.05.2022</div>
	<div class="feldbezeichnung">Gericht:</div>
	<div class="feldinhalt">Oberlandesgericht Hamm</div>
	<div class="feldbezeichnung">Aktenzeichen:</div>
	<div class="feldinhalt">I-4 U 112/21</div>
</div>`

const leitsaetzeDiv = `<div class="maindiv">
	<div class="feldbezeichnung">Vorinstanz:</div>
	<div class="feldinhalt">Landgericht Bochum, I-13 O 46/21</div>
	<div class="feldbezeichnung">Normen:</div>
	<div class="feldinhalt leitsaetze">§ 823 BGB</div>
</div>`

const tenorDiv = `<div class="maindiv">
	<div class="feldbezeichnung">Tenor:</div>
	<div class="feldinhalt tenor">Die Berufung wird zurückgewiesen.</div>
</div>`

const verdictDiv = `<div class="maindiv">
	<p class="absatzLinks">Tatbestand:</p>
	<p class="absatzLinks">A</p>
	<p class="absatzLinks">Entscheidungsgründe:</p>
	<p class="absatzLinks">B</p>
</div>`

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		markup   string
		expected []category
	}{
		{name: "meta", markup: metaDiv, expected: []category{categoryMeta}},
		{name: "leitsaetze", markup: leitsaetzeDiv, expected: []category{categoryLeitsaetze}},
		{name: "tenor", markup: tenorDiv, expected: []category{categoryTenor}},
		{name: "verdict", markup: verdictDiv, expected: []category{categoryVerdict}},
		{
			name: "tenor by label only",
			markup: `<div class="maindiv">
				<div class="feldbezeichnung">Tenor</div>
				<div class="feldinhalt">Die Klage wird abgewiesen.</div>
			</div>`,
			expected: []category{categoryTenor},
		},
		{
			name: "verdict by table",
			markup: `<div class="maindiv">
				<table class="absatzLinks"><tr><td>x</td></tr></table>
			</div>`,
			expected: []category{categoryVerdict},
		},
		{
			name: "ambiguous meta and verdict",
			markup: `<div class="maindiv">
				<div class="feldbezeichnung">Datum:</div>
				<div class="feldinhalt">03.05.2022</div>
				<p class="absatzLinks">text</p>
			</div>`,
			expected: []category{categoryMeta, categoryVerdict},
		},
		{
			name: "unknown",
			markup: `<div class="maindiv">
				<div class="feldbezeichnung">Unbekannt:</div>
				<div class="feldinhalt">irgendwas</div>
			</div>`,
			expected: nil,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, classify(firstMaindiv(t, test.markup)))
		})
	}
}

func TestExtractFields(t *testing.T) {
	fields, err := extractFields(firstMaindiv(t, metaDiv))
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"datum":        "03.05.2022",
		"gericht":      "Oberlandesgericht Hamm",
		"aktenzeichen": "I-4 U 112/21",
	}, fields)
}

func TestExtractFieldsStyleVariants(t *testing.T) {
	fields, err := extractFields(firstMaindiv(t, leitsaetzeDiv))
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"vorinstanz": "Landgericht Bochum, I-13 O 46/21",
		"normen":     "§ 823 BGB",
	}, fields)
}

func TestExtractFieldsCountMismatch(t *testing.T) {
	markup := `<div class="maindiv">
		<div class="feldbezeichnung">Datum:</div>
		<div class="feldbezeichnung">Gericht:</div>
		<div class="feldinhalt">03.05.2022</div>
	</div>`
	_, err := extractFields(firstMaindiv(t, markup))
	require.ErrorIs(t, err, ErrFieldCount)
}

func TestExtractFieldsDuplicateLabelLastWins(t *testing.T) {
	markup := `<div class="maindiv">
		<div class="feldbezeichnung">Datum:</div>
		<div class="feldinhalt">01.01.2020</div>
		<div class="feldbezeichnung">Datum</div>
		<div class="feldinhalt">02.02.2020</div>
	</div>`
	fields, err := extractFields(firstMaindiv(t, markup))
	require.NoError(t, err)
	require.Equal(t, map[string]string{"datum": "02.02.2020"}, fields)
}

func TestParseDocument(t *testing.T) {
	doc := docFromString(t, "<body>"+metaDiv+leitsaetzeDiv+tenorDiv+verdictDiv+"</body>")

	record, err := ParseDocument(context.Background(), doc, "nrwe/olgs/case.html")
	require.NoError(t, err)

	require.Equal(t, "nrwe/olgs/case.html", record.Fp)
	require.Equal(t, "03.05.2022", record.Fields["datum"])
	require.Equal(t, "§ 823 BGB", record.Fields["normen"])
	require.Equal(t, "Die Berufung wird zurückgewiesen.", record.Fields["tenor"])
	require.Equal(t, "format_1", record.Fields["format"])
	require.Equal(t, "A", record.Fields["tatbestand"])
	require.Equal(t, "B", record.Fields["entscheidungsgründe"])
	require.Contains(t, record.VerdictHtml, `class="absatzLinks"`)
}

func TestParseDocumentSkipsEmptyDivisions(t *testing.T) {
	doc := docFromString(t, `<body><div class="maindiv">   </div>`+metaDiv+`</body>`)

	record, err := ParseDocument(context.Background(), doc, "case.html")
	require.NoError(t, err)
	require.Equal(t, "Oberlandesgericht Hamm", record.Fields["gericht"])
}

func TestParseDocumentSkipsAmbiguousDivision(t *testing.T) {
	ambiguous := `<div class="maindiv">
		<div class="feldbezeichnung">Datum:</div>
		<div class="feldinhalt">03.05.2022</div>
		<p class="absatzLinks">text</p>
	</div>`
	doc := docFromString(t, "<body>"+ambiguous+tenorDiv+"</body>")

	record, err := ParseDocument(context.Background(), doc, "case.html")
	require.NoError(t, err)
	// the ambiguous division contributed nothing
	require.NotContains(t, record.Fields, "datum")
	require.NotContains(t, record.Fields, "format")
	require.Equal(t, "Die Berufung wird zurückgewiesen.", record.Fields["tenor"])
}

func TestParseDocumentSkipsUnknownDivision(t *testing.T) {
	unknown := `<div class="maindiv">
		<div class="feldbezeichnung">Unbekannt:</div>
		<div class="feldinhalt">irgendwas</div>
	</div>`
	doc := docFromString(t, "<body>"+unknown+metaDiv+"</body>")

	record, err := ParseDocument(context.Background(), doc, "case.html")
	require.NoError(t, err)
	require.NotContains(t, record.Fields, "unbekannt")
	require.Equal(t, "03.05.2022", record.Fields["datum"])
}

func TestParseDocumentDuplicateSection(t *testing.T) {
	doc := docFromString(t, "<body>"+metaDiv+metaDiv+"</body>")

	_, err := ParseDocument(context.Background(), doc, "case.html")
	require.ErrorIs(t, err, ErrDuplicateSection)
}

func TestParseDocumentDuplicateKeyAcrossSections(t *testing.T) {
	// a meta division carrying an extra "Format" label collides with the
	// verdict section's format key
	conflicting := `<div class="maindiv">
		<div class="feldbezeichnung">Datum:</div>
		<div class="feldinhalt">03.05.2022</div>
		<div class="feldbezeichnung">Format:</div>
		<div class="feldinhalt">gedruckt</div>
	</div>`
	doc := docFromString(t, "<body>"+conflicting+verdictDiv+"</body>")

	_, err := ParseDocument(context.Background(), doc, "case.html")
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestParseDocumentFieldCountFatal(t *testing.T) {
	broken := `<div class="maindiv">
		<div class="feldbezeichnung">Datum:</div>
		<div class="feldbezeichnung">Gericht:</div>
		<div class="feldinhalt">03.05.2022</div>
	</div>`
	doc := docFromString(t, "<body>"+broken+"</body>")

	_, err := ParseDocument(context.Background(), doc, "case.html")
	require.ErrorIs(t, err, ErrFieldCount)
}

func TestParseDocumentNoVerdict(t *testing.T) {
	doc := docFromString(t, "<body>"+metaDiv+"</body>")

	record, err := ParseDocument(context.Background(), doc, "case.html")
	require.NoError(t, err)
	require.Empty(t, record.VerdictHtml)
	require.NotContains(t, record.Fields, "format")
}

func TestRecordMarshalJSON(t *testing.T) {
	record := Record{
		Fp:          "olgs/case.html",
		Fields:      map[string]string{"datum": "03.05.2022"},
		VerdictHtml: "<div></div>",
	}
	raw, err := record.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{
		"datum": "03.05.2022",
		"fp": "olgs/case.html",
		"verdict_html": "<div></div>"
	}`, string(raw))
}
