package xsd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCatalog(t *testing.T, doc string) *Catalog {
	t.Helper()
	root, err := Parse([]byte(doc))
	require.NoError(t, err)
	return BuildCatalog(root)
}

func TestBuildCatalog(t *testing.T) {
	cat := buildCatalog(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="ShortCode">
    <xs:restriction base="BaseCode"><xs:maxLength value="4"/></xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="BaseCode">
    <xs:restriction base="xs:int"/>
  </xs:simpleType>
  <xs:complexType name="WrapperType">
    <xs:sequence><xs:element name="inner"/></xs:sequence>
  </xs:complexType>
</xs:schema>`)

	t.Run("Should index named declarations", func(t *testing.T) {
		st, ok := cat.LookupSimple("ShortCode")
		require.True(t, ok)
		assert.Equal(t, "BaseCode", st.Base)
		require.Len(t, st.Facets, 1)
		assert.Equal(t, "maxLength", st.Facets[0].Name)

		_, ok = cat.LookupComplex("WrapperType")
		assert.True(t, ok)
	})

	t.Run("Should tolerate namespace prefixes on references", func(t *testing.T) {
		_, ok := cat.LookupSimple("tns:ShortCode")
		assert.True(t, ok)
		_, ok = cat.LookupComplex("tns:WrapperType")
		assert.True(t, ok)
	})

	t.Run("Should resolve restriction chains to the primitive base", func(t *testing.T) {
		assert.Equal(t, "integer", cat.ResolveBase("ShortCode"))
		assert.Equal(t, "integer", cat.ResolveBase("BaseCode"))
		assert.Equal(t, "string", cat.ResolveBase("xs:string"))
	})

	t.Run("Should pass unknown references through untouched", func(t *testing.T) {
		assert.Equal(t, "xs:date", cat.ResolveBase("xs:date"))
		assert.Equal(t, "tns:Ghost", cat.ResolveBase("tns:Ghost"))
	})
}

func TestResolveBaseCycle(t *testing.T) {
	cat := buildCatalog(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="A"><xs:restriction base="B"/></xs:simpleType>
  <xs:simpleType name="B"><xs:restriction base="A"/></xs:simpleType>
</xs:schema>`)

	assert.Equal(t, "A", cat.ResolveBase("A"))
}
