package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryCSV = `domain,company_commercial_name,company_legal_name,company_all_available_names
acme.com,Acme Inc,Acme Incorporated,"Acme | Acme Inc"
GLOBEX.IO,Globex,,
,Missing Domain,,
`

const contactsCSV = `domain,phoneNumbers,socialMediaLinks,addresses,emails,success
acme.com,"(212) 555-0199, (212) 555-0200",https://facebook.com/acmeinc,12 Main St,info@acme.com,true
globex.io,,,,,false
`

func TestReadRegistryCSV_MapsColumns(t *testing.T) {
	rows, err := readRegistryCSV(context.Background(), strings.NewReader(registryCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "acme.com", rows[0].Domain)
	assert.Equal(t, "Acme Inc", rows[0].CommercialName)
	assert.Equal(t, "Acme Incorporated", rows[0].LegalName)
	assert.Equal(t, "Acme | Acme Inc", rows[0].AllAvailableNames)

	// Domain is lowercased; domainless rows are skipped.
	assert.Equal(t, "globex.io", rows[1].Domain)
}

func TestReadContactsCSV_MapsColumnsAndSuccess(t *testing.T) {
	rows, err := readContactsCSV(context.Background(), strings.NewReader(contactsCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "acme.com", rows[0].Domain)
	assert.Equal(t, "(212) 555-0199, (212) 555-0200", rows[0].PhoneNumbers)
	assert.True(t, rows[0].Success)
	assert.False(t, rows[1].Success)
}

func TestReadRegistry_MissingFile(t *testing.T) {
	_, err := ReadRegistry(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSourceMissing))
}

func TestReadRegistry_EmptyPath(t *testing.T) {
	_, err := ReadRegistry(context.Background(), "")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSourceMissing))
}

func TestReadContacts_MissingFileIsTolerated(t *testing.T) {
	rows, err := ReadContacts(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestTruthy(t *testing.T) {
	assert.True(t, truthy("true"))
	assert.True(t, truthy("TRUE"))
	assert.True(t, truthy("1"))
	assert.True(t, truthy("yes"))
	assert.False(t, truthy("false"))
	assert.False(t, truthy(""))
	assert.False(t, truthy("0"))
}
