package local

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
)

func TestLocal(t *testing.T) {
	store := New()
	assert.Nil(t, store.Get("bad word"))

	store.Add("bad word", "Slurs")
	store.Add("bad word", "Outdated")
	store.Add("bad word", "Slurs")
	assert.Equal(t, &cache.Lookup{Key: "bad word", Rules: []string{"Slurs", "Outdated"}}, store.Get("bad word"))

	store.Add("term1", "Slurs")
	assert.Equal(t, &cache.Lookup{Key: "term1", Rules: []string{"Slurs"}}, store.Get("term1"))
	assert.Equal(t, 2, store.Len())
}
