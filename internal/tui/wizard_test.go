package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/validation"
)

func TestNewBinding_PicksWidget(t *testing.T) {
	t.Parallel()
	st := form.NewState(form.Values{"approveTerms": false, "paySubsidyGranted": "", "companyName": "Oy Ab"})

	b := newBinding(st, validation.FieldRules{Path: "approveTerms"})
	assert.Equal(t, widgetConfirm, b.kind)
	assert.Equal(t, false, b.value())

	b = newBinding(st, validation.FieldRules{Path: "paySubsidyGranted", Rules: []validation.Rule{
		{Kind: validation.KindRequired},
		{Kind: validation.KindOneOf, Options: []string{"granted", "not_granted"}},
	}})
	assert.Equal(t, widgetSelect, b.kind)
	assert.Equal(t, []string{"granted", "not_granted"}, b.options)

	b = newBinding(st, validation.FieldRules{Path: "companyName"})
	assert.Equal(t, widgetInput, b.kind)
	assert.Equal(t, "Oy Ab", b.value())
}

func TestBuildStepForm_SkipsListFields(t *testing.T) {
	t.Parallel()
	f, _ := mountedForm(t)

	sf := buildStepForm(f, nil, DefaultTheme(), 0)
	require.NotNil(t, sf.form)
	assert.Equal(t, 0, sf.index)

	var paths []string
	for _, b := range sf.bindings {
		paths = append(paths, b.path.String())
		assert.NotContains(t, b.path.String(), "*")
	}
	assert.Contains(t, paths, "companyName")
	assert.Contains(t, paths, "companyBankAccountNumber")
}

func TestStepForm_ApplyWritesOnlyChangedFields(t *testing.T) {
	t.Parallel()
	f, _ := mountedForm(t)
	sf := buildStepForm(f, nil, DefaultTheme(), 80)

	for _, b := range sf.bindings {
		if b.path.String() == "companyName" {
			b.text = "Oy Testi Ab"
		}
	}
	require.NoError(t, sf.apply(context.Background(), f))

	v, _ := f.State().Value(form.P("companyName"))
	assert.Equal(t, "Oy Testi Ab", v)
	assert.Equal(t, []string{"companyName"}, f.State().DirtyPaths())
}

func TestStepForm_ApplyAddsAidGrant(t *testing.T) {
	t.Parallel()
	f, _ := mountedForm(t)
	sf := buildStepForm(f, nil, DefaultTheme(), 80)
	sf.aidGranter = " Helsingin kaupunki "
	sf.aidAmount = "1 000,50"
	sf.aidDate = "1.3.2024"

	require.NoError(t, sf.apply(context.Background(), f))

	l, err := f.AidList()
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, "Helsingin kaupunki", l.Grants()[0].Granter)
	assert.Equal(t, "1000.5", l.Total().String())
}

func TestStepForm_ApplyRejectsBadAmount(t *testing.T) {
	t.Parallel()
	f, _ := mountedForm(t)
	sf := buildStepForm(f, nil, DefaultTheme(), 80)
	sf.aidGranter = "City"
	sf.aidAmount = "lots"

	assert.Error(t, sf.apply(context.Background(), f))
}

func TestStepForm_ApplyUploadsFiles(t *testing.T) {
	t.Parallel()
	f, api := mountedForm(t)
	dir := t.TempDir()
	contract := filepath.Join(dir, "contract.pdf")
	require.NoError(t, os.WriteFile(contract, []byte("%PDF-1.4"), 0o600))

	sf := buildStepForm(f, nil, DefaultTheme(), 80)
	sf.uploadType = string(application.AttachmentEmploymentContract)
	sf.uploadPaths = contract + ", "

	require.NoError(t, sf.apply(context.Background(), f))

	assert.Equal(t, 1, api.creates, "draft saved before the upload")
	require.Len(t, api.uploads, 1)
	assert.Equal(t, "contract.pdf", api.uploads[0].FileName)
	assert.Equal(t, "application/pdf", api.uploads[0].ContentType)
	assert.Equal(t, "%PDF-1.4", api.uploadBodies[0])

	v, _ := f.State().Value(form.P("attachments"))
	assert.Len(t, v, 1)
}

func TestOpenUploads_MissingFile(t *testing.T) {
	t.Parallel()
	_, _, err := openUploads("other_attachment", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestCheckField_ReportsBlurErrors(t *testing.T) {
	t.Parallel()
	f, _ := mountedForm(t)

	err := checkField(f, form.P("companyContactPersonEmail"), "not-an-email")
	require.Error(t, err)

	assert.NoError(t, checkField(f, form.P("companyContactPersonEmail"), "maija@example.fi"))
}

func TestOptionLabel(t *testing.T) {
	t.Parallel()
	tr := mapTranslator{"options.granted": "Myönnetty"}

	assert.Equal(t, "Myönnetty", optionLabel(tr, "granted"))
	assert.Equal(t, "30", optionLabel(tr, "30"))
	assert.Equal(t, "30", optionLabel(nil, "30"))
}

func TestContentType(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]string{
		"a.PDF":  "application/pdf",
		"b.jpeg": "image/jpeg",
		"c.png":  "image/png",
		"d.docx": "application/octet-stream",
	} {
		assert.Equal(t, want, contentType(in), in)
	}
	assert.True(t, strings.HasPrefix(contentType("x.jpg"), "image/"))
}
