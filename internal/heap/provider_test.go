package heap

import (
	"errors"
	"testing"
	"unsafe"

	"go.uber.org/mock/gomock"
)

func TestNew_RejectsIncompatibleProviderABI(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockRegionProvider(ctrl)

	provider.EXPECT().ProviderABIVersion().Return("2.0.0").AnyTimes()

	if _, err := New(provider, DefaultConfig()); err == nil {
		t.Fatal("expected New to reject a provider declaring an incompatible ABI version")
	}
}

func TestNew_PropagatesInitialExtendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockRegionProvider(ctrl)

	backing := make([]byte, 64)
	base := unsafe.Pointer(&backing[0])

	provider.EXPECT().ProviderABIVersion().Return("1.0.0").AnyTimes()
	gomock.InOrder(
		provider.EXPECT().Sbrk(uintptr(2*headerSize)).Return(base, nil),
		provider.EXPECT().Sbrk(gomock.Any()).Return(nil, errors.New("address space exhausted")),
	)

	_, err := New(provider, DefaultConfig())
	if err == nil {
		t.Fatal("expected New to fail when the provider cannot supply the initial chunk")
	}
}
