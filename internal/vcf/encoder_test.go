package vcf

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/errors"
)

// fakeJPEG starts with the JPEG SOI marker; the encoder embeds photo bytes
// without decoding them.
var fakeJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

// mapLoader serves images from a map and fails for unknown references.
type mapLoader map[string][]byte

func (m mapLoader) LoadImage(_ context.Context, ref string) ([]byte, error) {
	data, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("image %q not found", ref)
	}
	return data, nil
}

// failingSink cannot be acquired.
type failingSink struct {
	acquired int
}

func (s *failingSink) Acquire() (Destination, error) {
	s.acquired++
	return nil, stderrors.New("disk full")
}

// recordingSink counts what happens to its destination.
type recordingSink struct {
	buf       bytes.Buffer
	writes    int
	committed bool
	aborted   bool
	writeErr  error
	commitErr error
}

func (s *recordingSink) Acquire() (Destination, error) { return s, nil }

func (s *recordingSink) Write(p []byte) (int, error) {
	s.writes++
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.buf.Write(p)
}

func (s *recordingSink) Commit() error {
	s.committed = true
	return s.commitErr
}

func (s *recordingSink) Abort() error {
	s.aborted = true
	return nil
}

func decodeCards(t *testing.T, data []byte) []vcard.Card {
	t.Helper()
	dec := vcard.NewDecoder(bytes.NewReader(data))
	var cards []vcard.Card
	for {
		card, err := dec.Decode()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		cards = append(cards, card)
	}
	return cards
}

func encodeOne(t *testing.T, c *contact.Contact) vcard.Card {
	t.Helper()
	var buf bytes.Buffer
	res := NewEncoder(Options{}).Encode(context.Background(), []*contact.Contact{c}, WriterSink{W: &buf}, false)
	require.NoError(t, res.Err)
	require.Equal(t, OutcomeOK, res.Outcome)

	cards := decodeCards(t, buf.Bytes())
	require.Len(t, cards, 1)
	return cards[0]
}

func named(id, first, last string) *contact.Contact {
	return &contact.Contact{ID: id, FirstName: first, Surname: last}
}

func TestEncode_SingleContact(t *testing.T) {
	c := &contact.Contact{
		ID:           "01JANE",
		FirstName:    "Jane",
		Surname:      "Doe",
		PhoneNumbers: []contact.PhoneNumber{{Value: "+1555123", Type: contact.PhoneMobile}},
		Emails:       []contact.Email{{Value: "jane@x.com", Type: contact.EmailWork}},
	}

	var buf bytes.Buffer
	res := NewEncoder(Options{}).Encode(context.Background(), []*contact.Contact{c}, WriterSink{W: &buf}, false)

	require.Equal(t, OutcomeOK, res.Outcome)
	require.Equal(t, 1, res.Succeeded)
	require.Equal(t, 0, res.Failed)
	require.Empty(t, res.Failures)
	require.NoError(t, res.Err)

	cards := decodeCards(t, buf.Bytes())
	require.Len(t, cards, 1)
	card := cards[0]

	require.Len(t, card[vcard.FieldName], 1)
	name := card.Name()
	require.Equal(t, "Jane", name.GivenName)
	require.Equal(t, "Doe", name.FamilyName)

	require.Len(t, card[vcard.FieldTelephone], 1)
	tel := card[vcard.FieldTelephone][0]
	require.Equal(t, "+1555123", tel.Value)
	require.Equal(t, []string{"CELL"}, tel.Params[vcard.ParamType])

	require.Len(t, card[vcard.FieldEmail], 1)
	email := card[vcard.FieldEmail][0]
	require.Equal(t, "jane@x.com", email.Value)
	require.Equal(t, []string{"WORK"}, email.Params[vcard.ParamType])

	require.Equal(t, "4.0", card.Value(vcard.FieldVersion))
	require.Equal(t, "Jane Doe", card.Value(vcard.FieldFormattedName))
	require.Equal(t, "01JANE", card.Value(vcard.FieldUID))
	require.Contains(t, buf.String(), "BEGIN:VCARD\r\n")
	require.Contains(t, buf.String(), "END:VCARD\r\n")
}

func TestEncode_NameAlwaysHasFiveParts(t *testing.T) {
	card := encodeOne(t, &contact.Contact{Nickname: "Ziggy"})

	require.Len(t, card[vcard.FieldName], 1)
	require.Equal(t, ";;;;", card[vcard.FieldName][0].Value)

	card = encodeOne(t, &contact.Contact{
		Prefix: "Dr.", FirstName: "Ada", MiddleName: "K", Surname: "Lovelace", Suffix: "PhD",
	})
	name := card.Name()
	require.Equal(t, "Dr.", name.HonorificPrefix)
	require.Equal(t, "Ada", name.GivenName)
	require.Equal(t, "K", name.AdditionalName)
	require.Equal(t, "Lovelace", name.FamilyName)
	require.Equal(t, "PhD", name.HonorificSuffix)
}

func TestEncode_OptionalTextFields(t *testing.T) {
	t.Run("omitted when empty", func(t *testing.T) {
		card := encodeOne(t, named("1", "Ann", "Lee"))
		require.Nil(t, card.Get(vcard.FieldNickname))
		require.Nil(t, card.Get(vcard.FieldNote))
		require.Nil(t, card.Get(vcard.FieldOrganization))
		require.Nil(t, card.Get(vcard.FieldTitle))
		require.Nil(t, card.Get(vcard.FieldPhoto))
		require.Nil(t, card.Get(vcard.FieldBirthday))
	})

	t.Run("emitted when set", func(t *testing.T) {
		c := named("1", "Ann", "Lee")
		c.Nickname = "Annie"
		c.Notes = "met at the conference"
		card := encodeOne(t, c)
		require.Equal(t, "Annie", card.Value(vcard.FieldNickname))
		require.Equal(t, "met at the conference", card.Value(vcard.FieldNote))
	})
}

func TestEncode_Organization(t *testing.T) {
	t.Run("company and title", func(t *testing.T) {
		c := named("1", "Ann", "Lee")
		c.Organization = &contact.Organization{Company: "Acme", JobPosition: "Engineer"}
		card := encodeOne(t, c)
		require.Equal(t, "Acme", card.Value(vcard.FieldOrganization))
		require.Equal(t, "Engineer", card.Value(vcard.FieldTitle))
	})

	t.Run("title emitted even when job position is empty", func(t *testing.T) {
		c := named("1", "Ann", "Lee")
		c.Organization = &contact.Organization{Company: "Acme"}
		card := encodeOne(t, c)
		require.Equal(t, "Acme", card.Value(vcard.FieldOrganization))
		require.NotNil(t, card.Get(vcard.FieldTitle))
		require.Equal(t, "", card.Value(vcard.FieldTitle))
	})

	t.Run("empty organization omitted", func(t *testing.T) {
		c := named("1", "Ann", "Lee")
		c.Organization = &contact.Organization{Company: "  "}
		card := encodeOne(t, c)
		require.Nil(t, card.Get(vcard.FieldOrganization))
		require.Nil(t, card.Get(vcard.FieldTitle))
	})
}

func TestEncode_Events(t *testing.T) {
	c := named("1", "Ann", "Lee")
	c.Events = []contact.Event{
		{Value: "--06-15", Type: contact.EventBirthday},
		{Value: "2010-09-01", Type: contact.EventAnniversary},
		{Value: "2020-01-01", Type: contact.EventOther},
		{Value: "not even a date", Type: contact.EventType("graduation")},
	}
	card := encodeOne(t, c)

	require.Len(t, card[vcard.FieldBirthday], 1)
	require.Equal(t, "--0615", card.Value(vcard.FieldBirthday))

	require.Len(t, card[vcard.FieldAnniversary], 1)
	require.Equal(t, "20100901", card.Value(vcard.FieldAnniversary))
}

func TestEncode_BirthdayDates(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "--06-15", want: "--0615"},
		{value: "1990-06-15", want: "19900615"},
		{value: "--01-31", want: "--0131"},
		{value: "2000-12-01", want: "20001201"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c := named("1", "Ann", "Lee")
			c.Events = []contact.Event{{Value: tt.value, Type: contact.EventBirthday}}
			card := encodeOne(t, c)
			require.Equal(t, tt.want, card.Value(vcard.FieldBirthday))
		})
	}
}

func TestEncode_MalformedBirthdayFailsContact(t *testing.T) {
	bad := named("2", "Bad", "Date")
	bad.Events = []contact.Event{{Value: "06/15/1990", Type: contact.EventBirthday}}

	var buf bytes.Buffer
	res := NewEncoder(Options{}).Encode(context.Background(),
		[]*contact.Contact{named("1", "Ok", "One"), bad}, WriterSink{W: &buf}, false)

	require.Equal(t, OutcomePartial, res.Outcome)
	require.Equal(t, 1, res.Succeeded)
	require.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures, 1)
	require.Equal(t, 1, res.Failures[0].Index)
	require.Equal(t, "2", res.Failures[0].ContactID)
	require.True(t, errors.Is(res.Failures[0].Err, errors.ErrContactEncodingFailed))
	require.ErrorIs(t, res.Failures[0].Err, ErrInvalidDate)
}

func TestEncode_LabelledAddressesAndWebsites(t *testing.T) {
	c := named("1", "Ann", "Lee")
	c.Addresses = []contact.Address{
		{Value: "1 Main St", Type: contact.AddressWork},
		{Value: "2 Side St", Type: contact.AddressOther},
	}
	c.Websites = []string{"https://a.example", "https://b.example", "https://c.example"}
	card := encodeOne(t, c)

	addrs := card.Addresses()
	require.Len(t, addrs, 2)
	require.Equal(t, "1 Main St", addrs[0].StreetAddress)
	require.Equal(t, []string{"WORK"}, addrs[0].Params[vcard.ParamType])
	require.Equal(t, "2 Side St", addrs[1].StreetAddress)
	require.Equal(t, []string{"HOME"}, addrs[1].Params[vcard.ParamType])

	var urls []string
	for _, f := range card[vcard.FieldURL] {
		urls = append(urls, f.Value)
	}
	require.Equal(t, c.Websites, urls)
}

func TestEncode_PhoneLabelsInCard(t *testing.T) {
	c := named("1", "Ann", "Lee")
	c.PhoneNumbers = []contact.PhoneNumber{
		{Value: "1", Type: contact.PhoneMain},
		{Value: "2", Type: contact.PhoneWorkFax},
		{Value: "3", Type: contact.PhoneType("satellite")},
	}
	card := encodeOne(t, c)

	tels := card[vcard.FieldTelephone]
	require.Len(t, tels, 3)
	require.Equal(t, []string{"PREF"}, tels[0].Params[vcard.ParamType])
	require.Equal(t, []string{"WORK_FAX"}, tels[1].Params[vcard.ParamType])
	require.Equal(t, []string{"HOME"}, tels[2].Params[vcard.ParamType])
}

func TestEncode_Photo(t *testing.T) {
	t.Run("inline data", func(t *testing.T) {
		c := named("1", "Ann", "Lee")
		c.Thumbnail = &contact.Thumbnail{Data: fakeJPEG}
		card := encodeOne(t, c)

		photo := card.Get(vcard.FieldPhoto)
		require.NotNil(t, photo)
		require.True(t, strings.HasPrefix(photo.Value, "data:image/jpeg;base64,"))
		require.Equal(t, "image/jpeg", photo.Params.Get("MEDIATYPE"))
	})

	t.Run("reference through loader", func(t *testing.T) {
		c := named("1", "Ann", "Lee")
		c.Thumbnail = &contact.Thumbnail{URI: "ann.jpg"}

		var buf bytes.Buffer
		enc := NewEncoder(Options{Loader: mapLoader{"ann.jpg": fakeJPEG}})
		res := enc.Encode(context.Background(), []*contact.Contact{c}, WriterSink{W: &buf}, false)
		require.Equal(t, OutcomeOK, res.Outcome)

		cards := decodeCards(t, buf.Bytes())
		require.Len(t, cards, 1)
		require.NotNil(t, cards[0].Get(vcard.FieldPhoto))
	})

	t.Run("reference without loader fails contact", func(t *testing.T) {
		c := named("1", "Ann", "Lee")
		c.Thumbnail = &contact.Thumbnail{URI: "ann.jpg"}

		var buf bytes.Buffer
		res := NewEncoder(Options{}).Encode(context.Background(), []*contact.Contact{c}, WriterSink{W: &buf}, false)
		require.Equal(t, OutcomeFail, res.Outcome)
		require.Equal(t, 0, res.Succeeded)
		require.Equal(t, 1, res.Failed)
		require.Zero(t, buf.Len())
	})
}

func TestEncode_PartialBatchKeepsOrder(t *testing.T) {
	middle := named("2", "Bob", "Photo")
	middle.Thumbnail = &contact.Thumbnail{URI: "missing.jpg"}
	contacts := []*contact.Contact{named("1", "Ann", "Lee"), middle, named("3", "Cid", "Moe")}

	var buf bytes.Buffer
	enc := NewEncoder(Options{Loader: mapLoader{}})
	res := enc.Encode(context.Background(), contacts, WriterSink{W: &buf}, false)

	require.Equal(t, OutcomePartial, res.Outcome)
	require.Equal(t, 2, res.Succeeded)
	require.Equal(t, 1, res.Failed)
	require.NoError(t, res.Err)
	require.Len(t, res.Failures, 1)
	require.Equal(t, 1, res.Failures[0].Index)
	require.Equal(t, "2", res.Failures[0].ContactID)

	cards := decodeCards(t, buf.Bytes())
	require.Len(t, cards, 2)
	require.Equal(t, "1", cards[0].Value(vcard.FieldUID))
	require.Equal(t, "3", cards[1].Value(vcard.FieldUID))
}

func TestEncode_ConcurrentBuildPreservesInputOrder(t *testing.T) {
	var contacts []*contact.Contact
	for i := 0; i < 50; i++ {
		c := named(fmt.Sprintf("%02d", i), "Person", fmt.Sprintf("N%02d", i))
		if i%7 == 3 {
			c.Thumbnail = &contact.Thumbnail{URI: "missing.jpg"}
		}
		contacts = append(contacts, c)
	}

	var buf bytes.Buffer
	enc := NewEncoder(Options{Workers: 8, Loader: mapLoader{}})
	res := enc.Encode(context.Background(), contacts, WriterSink{W: &buf}, false)

	require.Equal(t, OutcomePartial, res.Outcome)
	require.Equal(t, 43, res.Succeeded)
	require.Equal(t, 7, res.Failed)

	cards := decodeCards(t, buf.Bytes())
	require.Len(t, cards, 43)
	var ids []string
	for _, card := range cards {
		ids = append(ids, card.Value(vcard.FieldUID))
	}
	var want []string
	for i := 0; i < 50; i++ {
		if i%7 != 3 {
			want = append(want, fmt.Sprintf("%02d", i))
		}
	}
	require.Equal(t, want, ids)

	var failedIdx []int
	for _, f := range res.Failures {
		failedIdx = append(failedIdx, f.Index)
	}
	require.Equal(t, []int{3, 10, 17, 24, 31, 38, 45}, failedIdx)
}

func TestEncode_SinkUnavailable(t *testing.T) {
	sink := &failingSink{}
	var notified atomic.Int32
	enc := NewEncoder(Options{Notifier: NotifierFunc(func(int) { notified.Add(1) })})

	res := enc.Encode(context.Background(), []*contact.Contact{named("1", "Ann", "Lee")}, sink, true)

	require.Equal(t, OutcomeFail, res.Outcome)
	require.Equal(t, 0, res.Succeeded)
	require.Equal(t, 0, res.Failed)
	require.Equal(t, 1, sink.acquired)
	require.True(t, errors.Is(res.Err, errors.ErrSinkUnavailable))
	require.Zero(t, notified.Load())
}

func TestEncode_NilSink(t *testing.T) {
	res := NewEncoder(Options{}).Encode(context.Background(), []*contact.Contact{named("1", "Ann", "Lee")}, nil, false)
	require.Equal(t, OutcomeFail, res.Outcome)
	require.True(t, errors.Is(res.Err, errors.ErrSinkUnavailable))
}

func TestEncode_WriterSinkWithoutWriter(t *testing.T) {
	res := NewEncoder(Options{}).Encode(context.Background(), []*contact.Contact{named("1", "Ann", "Lee")}, WriterSink{}, false)
	require.Equal(t, OutcomeFail, res.Outcome)
	require.True(t, errors.Is(res.Err, errors.ErrSinkUnavailable))
	require.ErrorIs(t, res.Err, ErrNoWriter)
}

func TestEncode_EmptyInput(t *testing.T) {
	sink := &recordingSink{}
	res := NewEncoder(Options{}).Encode(context.Background(), nil, sink, false)

	require.Equal(t, OutcomeFail, res.Outcome)
	require.Equal(t, 0, res.Succeeded)
	require.Equal(t, 0, res.Failed)
	require.NoError(t, res.Err)
	require.Equal(t, 0, sink.writes)
	require.True(t, sink.aborted)
	require.False(t, sink.committed)
}

func TestEncode_AllFail(t *testing.T) {
	contacts := []*contact.Contact{nil, nil}
	bad := named("3", "Bad", "Photo")
	bad.Thumbnail = &contact.Thumbnail{URI: "nope"}
	contacts = append(contacts, bad)

	sink := &recordingSink{}
	res := NewEncoder(Options{Loader: mapLoader{}}).Encode(context.Background(), contacts, sink, false)

	require.Equal(t, OutcomeFail, res.Outcome)
	require.Equal(t, 0, res.Succeeded)
	require.Equal(t, 3, res.Failed)
	require.Len(t, res.Failures, 3)
	require.NoError(t, res.Err)
	require.Equal(t, 0, sink.writes)
	require.True(t, sink.aborted)
}

func TestEncode_AllSucceed(t *testing.T) {
	sink := &recordingSink{}
	contacts := []*contact.Contact{named("1", "Ann", "Lee"), named("2", "Bob", "Ray")}
	res := NewEncoder(Options{}).Encode(context.Background(), contacts, sink, false)

	require.Equal(t, OutcomeOK, res.Outcome)
	require.Equal(t, 2, res.Succeeded)
	require.Equal(t, 0, res.Failed)
	require.Equal(t, 1, sink.writes)
	require.True(t, sink.committed)
	require.False(t, sink.aborted)
	require.Len(t, decodeCards(t, sink.buf.Bytes()), 2)
}

func TestEncode_WriteFailure(t *testing.T) {
	sink := &recordingSink{writeErr: stderrors.New("broken pipe")}
	res := NewEncoder(Options{}).Encode(context.Background(), []*contact.Contact{named("1", "Ann", "Lee")}, sink, false)

	require.Equal(t, OutcomeFail, res.Outcome)
	require.True(t, errors.Is(res.Err, errors.ErrSerializationFailed))
	require.True(t, sink.aborted)
	require.False(t, sink.committed)
}

func TestEncode_CommitFailure(t *testing.T) {
	sink := &recordingSink{commitErr: stderrors.New("rename failed")}
	res := NewEncoder(Options{}).Encode(context.Background(), []*contact.Contact{named("1", "Ann", "Lee")}, sink, false)

	require.Equal(t, OutcomeFail, res.Outcome)
	require.True(t, errors.Is(res.Err, errors.ErrSerializationFailed))
	require.True(t, sink.committed)
}

func TestEncode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	res := NewEncoder(Options{}).Encode(ctx, []*contact.Contact{named("1", "Ann", "Lee")}, sink, false)

	require.Equal(t, OutcomeFail, res.Outcome)
	require.True(t, errors.Is(res.Err, errors.ErrCancelled))
	require.Equal(t, 0, sink.writes)
	require.True(t, sink.aborted)
}

func TestEncode_CancelledMidBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loader := ImageLoaderFunc(func(ctx context.Context, ref string) ([]byte, error) {
		cancel()
		return nil, ctx.Err()
	})

	var contacts []*contact.Contact
	for i := 0; i < 5; i++ {
		c := named(fmt.Sprint(i), "P", "Q")
		c.Thumbnail = &contact.Thumbnail{URI: "x"}
		contacts = append(contacts, c)
	}

	sink := &recordingSink{}
	res := NewEncoder(Options{Loader: loader, Workers: 1}).Encode(ctx, contacts, sink, false)

	require.Equal(t, OutcomeFail, res.Outcome)
	require.True(t, errors.Is(res.Err, errors.ErrCancelled))
	require.Equal(t, 0, sink.writes)
}

func TestEncode_PanicIsContactFailure(t *testing.T) {
	loader := ImageLoaderFunc(func(context.Context, string) ([]byte, error) {
		panic("loader exploded")
	})
	bad := named("2", "Bad", "Loader")
	bad.Thumbnail = &contact.Thumbnail{URI: "x"}

	var buf bytes.Buffer
	res := NewEncoder(Options{Loader: loader}).Encode(context.Background(),
		[]*contact.Contact{named("1", "Ann", "Lee"), bad}, WriterSink{W: &buf}, false)

	require.Equal(t, OutcomePartial, res.Outcome)
	require.Equal(t, 1, res.Failed)
	require.Contains(t, res.Failures[0].Message, "loader exploded")
}

func TestEncode_Notifier(t *testing.T) {
	got := make(chan int, 1)
	enc := NewEncoder(Options{Notifier: NotifierFunc(func(total int) { got <- total })})

	var buf bytes.Buffer
	contacts := []*contact.Contact{named("1", "Ann", "Lee"), named("2", "Bob", "Ray")}
	res := enc.Encode(context.Background(), contacts, WriterSink{W: &buf}, true)
	require.Equal(t, OutcomeOK, res.Outcome)

	select {
	case total := <-got:
		require.Equal(t, 2, total)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestEncode_NotifierNotCalledUnlessAsked(t *testing.T) {
	var calls atomic.Int32
	enc := NewEncoder(Options{Notifier: NotifierFunc(func(int) { calls.Add(1) })})

	var buf bytes.Buffer
	res := enc.Encode(context.Background(), []*contact.Contact{named("1", "Ann", "Lee")}, WriterSink{W: &buf}, false)
	require.Equal(t, OutcomeOK, res.Outcome)

	time.Sleep(20 * time.Millisecond)
	require.Zero(t, calls.Load())
}

func TestEncode_NotifierDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	enc := NewEncoder(Options{Notifier: NotifierFunc(func(int) { <-release })})

	done := make(chan Result, 1)
	go func() {
		var buf bytes.Buffer
		done <- enc.Encode(context.Background(), []*contact.Contact{named("1", "Ann", "Lee")}, WriterSink{W: &buf}, true)
	}()

	select {
	case res := <-done:
		require.Equal(t, OutcomeOK, res.Outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("encode blocked on notifier")
	}
}

func TestEncode_DoesNotMutateInput(t *testing.T) {
	c := &contact.Contact{
		ID:           "1",
		FirstName:    "Ann",
		PhoneNumbers: []contact.PhoneNumber{{Value: "1", Type: contact.PhoneMobile}},
		Organization: &contact.Organization{Company: "Acme"},
		Thumbnail:    &contact.Thumbnail{URI: " ann.jpg "},
	}
	before := *c
	beforeOrg := *c.Organization
	beforeThumb := *c.Thumbnail

	var buf bytes.Buffer
	enc := NewEncoder(Options{Loader: mapLoader{"ann.jpg": fakeJPEG}})
	res := enc.Encode(context.Background(), []*contact.Contact{c}, WriterSink{W: &buf}, false)
	require.Equal(t, OutcomeOK, res.Outcome)

	require.Equal(t, before, *c)
	require.Equal(t, beforeOrg, *c.Organization)
	require.Equal(t, beforeThumb, *c.Thumbnail)
}

func TestComputeOutcome(t *testing.T) {
	require.Equal(t, OutcomeFail, computeOutcome(0, 0))
	require.Equal(t, OutcomeFail, computeOutcome(0, 3))
	require.Equal(t, OutcomePartial, computeOutcome(2, 1))
	require.Equal(t, OutcomeOK, computeOutcome(3, 0))
}
