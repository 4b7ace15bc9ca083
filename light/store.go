package light

import "github.com/coinexchain/tm-light-client/light/store"

// Store is the LightStore of spec.md §3. See light/store.Store for the
// full documentation; this alias lets the rest of the light package refer
// to it unqualified, the way it refers to Status.
type Store = store.Store
