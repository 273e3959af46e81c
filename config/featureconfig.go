package config

import "sync"

// FeatureFlags is a struct to represent what features the client will
// perform on runtime. The process for adding a new one: add a field here,
// default it to false, and gate the new behavior behind a read of
// Features().<Flag> so existing behavior is unchanged until it is enabled.
type FeatureFlags struct {
	// WriteSSZStateTransitions enables the debug dump described in spec.md
	// §6: every processed block and its pre/post states are serialized to
	// SSZ files under a temp directory. No functional effect.
	WriteSSZStateTransitions bool

	// SkipBLSVerify bypasses aggregate signature verification. Test-only;
	// never set in a production build.
	SkipBLSVerify bool

	// InitSyncNoVerify mirrors the teacher's initial-sync fast path: skips
	// per-attestation signature checks during bulk historical replay.
	InitSyncNoVerify bool
}

var (
	featureLock sync.RWMutex
	features    = &FeatureFlags{}
)

// Features returns the active feature flag set.
func Features() *FeatureFlags {
	featureLock.RLock()
	defer featureLock.RUnlock()
	return features
}

// InitFeatures sets the global feature flag set equal to f.
func InitFeatures(f *FeatureFlags) {
	featureLock.Lock()
	defer featureLock.Unlock()
	features = f
}
