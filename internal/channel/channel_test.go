package channel

import "testing"

func TestDeriveTelephone(t *testing.T) {
	got := Derive(map[string]string{
		SourceAttr:         TelephoneSourceValue,
		IncomingNumberAttr: "+15550001234",
	}, nil, "ignored")

	if got.Kind != KindTelephone || got.Phone != "+15550001234" {
		t.Fatalf("unexpected context %+v", got)
	}
	if !got.HasPhone() {
		t.Fatal("expected telephone context to carry a phone")
	}
}

func TestDeriveTelephoneWithoutUsableNumber(t *testing.T) {
	for _, number := range []string{"anonymous", "", "12"} {
		got := Derive(map[string]string{
			SourceAttr:         TelephoneSourceValue,
			IncomingNumberAttr: number,
		}, nil, "console-user")

		if got.Kind != KindTelephone {
			t.Fatalf("number %q: expected telephone kind, got %+v", number, got)
		}
		if got.HasPhone() || !got.RequiresPhone() {
			t.Fatalf("number %q: unexpected phone state %+v", number, got)
		}
	}
}

func TestDeriveTelephoneStripsSeparators(t *testing.T) {
	got := Derive(map[string]string{
		SourceAttr:         TelephoneSourceValue,
		IncomingNumberAttr: "+1 (555) 123-4567",
	}, nil, "ignored")
	if got.Kind != KindTelephone || got.Phone != "+15551234567" {
		t.Fatalf("unexpected context %+v", got)
	}
}

func TestDeriveSMSWithoutNumericUser(t *testing.T) {
	got := Derive(nil, map[string]string{ChannelTypeAttr: SMSChannelValue}, "not-a-number")
	if got.Kind != KindSMS || got.HasPhone() || !got.RequiresPhone() {
		t.Fatalf("unexpected context %+v", got)
	}
}

func TestDeriveSMSPrefixesPlus(t *testing.T) {
	got := Derive(nil, map[string]string{ChannelTypeAttr: SMSChannelValue}, "15550009876")
	if got.Kind != KindSMS || got.Phone != "+15550009876" {
		t.Fatalf("unexpected context %+v", got)
	}
}

func TestDeriveMessenger(t *testing.T) {
	got := Derive(nil, map[string]string{
		ChannelTypeAttr:   MessengerChannelVal,
		ChannelUserIDAttr: "fb-42",
	}, "lex-user")
	if got.Kind != KindMessenger || got.ExternalUserID != "fb-42" || got.HasPhone() {
		t.Fatalf("unexpected context %+v", got)
	}
}

func TestDeriveConsoleDefault(t *testing.T) {
	got := Derive(nil, nil, "dev")
	if got.Kind != KindConsole || got.ExternalUserID != "dev" || got.RequiresPhone() {
		t.Fatalf("unexpected context %+v", got)
	}
}

func TestMaskPhone(t *testing.T) {
	tests := map[string]string{
		"+15550001234": "********1234",
		"123":          "***",
		"":             "",
	}
	for in, want := range tests {
		if got := MaskPhone(in); got != want {
			t.Errorf("MaskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}
