package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
)

const testAddress = "0x52908400098527886E0F7030069857D2E4169EE7"

type fakePopup struct {
	closed bool
	known  bool
}

func (p *fakePopup) ClosedState() (bool, bool) { return p.closed, p.known }

type fakeOpener struct {
	popup   Popup
	lastURL string
}

func (o *fakeOpener) Open(url, name string, width, height int) Popup {
	o.lastURL = url
	return o.popup
}

func TestLauncherURL(t *testing.T) {
	l := NewLauncher("https://jumper.exchange", 137)

	t.Run("builds encoded widget url", func(t *testing.T) {
		got, err := l.URL(testAddress)
		require.NoError(t, err)
		assert.Equal(t,
			"https://jumper.exchange/swap?destinationAddress="+testAddress+"&destinationChainId=137",
			got,
		)
	})

	t.Run("rejects a non-hex address", func(t *testing.T) {
		_, err := l.URL("not-an-address")
		assert.Error(t, err)
	})

	t.Run("rejects a truncated address", func(t *testing.T) {
		_, err := l.URL("0x1234")
		assert.Error(t, err)
	})
}

func TestLauncherOpen(t *testing.T) {
	l := NewLauncher("https://jumper.exchange", 137)

	t.Run("open popup with widget url", func(t *testing.T) {
		opener := &fakeOpener{popup: &fakePopup{closed: false, known: true}}
		popup, err := l.Open(opener, testAddress)
		require.NoError(t, err)
		assert.NotNil(t, popup)
		assert.Contains(t, opener.lastURL, "destinationChainId=137")
	})

	t.Run("nil handle means blocked", func(t *testing.T) {
		_, err := l.Open(&fakeOpener{popup: nil}, testAddress)
		assert.ErrorIs(t, err, domain.ErrPopupBlocked)
	})

	t.Run("immediately closed window means blocked", func(t *testing.T) {
		_, err := l.Open(&fakeOpener{popup: &fakePopup{closed: true, known: true}}, testAddress)
		assert.ErrorIs(t, err, domain.ErrPopupBlocked)
	})

	t.Run("unreadable closed state means blocked", func(t *testing.T) {
		_, err := l.Open(&fakeOpener{popup: &fakePopup{closed: false, known: false}}, testAddress)
		assert.ErrorIs(t, err, domain.ErrPopupBlocked)
	})
}
