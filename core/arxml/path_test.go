package arxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_Helpers(t *testing.T) {
	p := Path("").Join("Pkg").Join("Sub").Join("Sig")
	assert.Equal(t, Path("/Pkg/Sub/Sig"), p)
	assert.Equal(t, Path("/Pkg/Sub"), p.Parent())
	assert.Equal(t, "Sig", p.Base())
	assert.Equal(t, Path(""), Path("/Pkg").Parent())
}

func TestBuildIndex_SampleDocument(t *testing.T) {
	root, err := Parse(sampleDoc)
	require.NoError(t, err)

	idx, err := BuildIndex(root)
	require.NoError(t, err)

	assert.Equal(t, []Path{"/Pkg", "/Pkg/SigX", "/Pkg/SysSigX"}, idx.Paths())

	sig := idx.Get("/Pkg/SigX")
	require.NotNil(t, sig)
	assert.Equal(t, "I-SIGNAL", sig.Node.Tag)
	// SigX sits under Pkg through the anonymous ELEMENTS wrapper.
	assert.Equal(t, []string{"ELEMENTS"}, sig.Containers)

	pkg := idx.Get("/Pkg")
	require.NotNil(t, pkg)
	assert.Equal(t, []string{"AR-PACKAGES"}, pkg.Containers)

	assert.False(t, idx.Has("/Pkg/Missing"))
	assert.Equal(t, 3, idx.Len())
}

func TestBuildIndex_DuplicatePath(t *testing.T) {
	const dup = `<AUTOSAR>
  <AR-PACKAGES>
    <AR-PACKAGE>
      <SHORT-NAME>Pkg</SHORT-NAME>
      <ELEMENTS>
        <I-SIGNAL><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>
        <I-SIGNAL><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>
      </ELEMENTS>
    </AR-PACKAGE>
  </AR-PACKAGES>
</AUTOSAR>`

	root, err := Parse(dup)
	require.NoError(t, err)

	_, err = BuildIndex(root)
	require.Error(t, err)

	var derr *DuplicatePathError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, Path("/Pkg/Sig"), derr.Path)
	assert.Equal(t, "I-SIGNAL", derr.Tag)
}

func TestBuildIndex_AnonymousNodesNotIndexed(t *testing.T) {
	const doc = `<AUTOSAR>
  <AR-PACKAGES>
    <AR-PACKAGE>
      <SHORT-NAME>Pkg</SHORT-NAME>
      <DESC>plain content, no path segment</DESC>
    </AR-PACKAGE>
  </AR-PACKAGES>
</AUTOSAR>`

	root, err := Parse(doc)
	require.NoError(t, err)

	idx, err := BuildIndex(root)
	require.NoError(t, err)
	assert.Equal(t, []Path{"/Pkg"}, idx.Paths())
}
