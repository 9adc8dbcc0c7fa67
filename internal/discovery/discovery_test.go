package discovery

import "testing"

func TestParseAnnouncementAccepted(t *testing.T) {
	adv, accepted, st := ParseAnnouncement("ID SN123 SYN1 6480 Cortex Array One", "10.0.0.5")
	if !st.Ok() || !accepted {
		t.Fatalf("expected accepted announcement, got accepted=%v st=%v", accepted, st)
	}
	if adv.Serial != "SN123" || adv.Port != 6480 || adv.Name != "Cortex Array One" || adv.Host != "10.0.0.5" {
		t.Fatalf("unexpected advertisement: %+v", adv)
	}
}

func TestParseAnnouncementWrongCapabilityIgnored(t *testing.T) {
	_, accepted, st := ParseAnnouncement("ID SN123 ABC1 6480 Other Device", "10.0.0.5")
	if !st.Ok() {
		t.Fatalf("expected ok status for ignored announcement, got %v", st)
	}
	if accepted {
		t.Fatalf("expected non-SYN capability to be ignored")
	}
}

func TestParseAnnouncementRejectsMissingIDToken(t *testing.T) {
	_, accepted, st := ParseAnnouncement("XX SN123 SYN1 6480 Name", "10.0.0.5")
	if st.Ok() || accepted {
		t.Fatalf("expected invalid_argument for missing ID token")
	}
}

func TestParseAnnouncementRejectsBadPort(t *testing.T) {
	_, accepted, st := ParseAnnouncement("ID SN123 SYN1 99999 Name", "10.0.0.5")
	if st.Ok() || accepted {
		t.Fatalf("expected invalid_argument for out-of-range port")
	}
}

func TestParseAnnouncementRejectsTooFewTokens(t *testing.T) {
	_, accepted, st := ParseAnnouncement("ID SN123", "10.0.0.5")
	if st.Ok() || accepted {
		t.Fatalf("expected invalid_argument for short announcement")
	}
}

func TestListenerDedupesOnSerialAndHost(t *testing.T) {
	l := NewListener()
	adv := Advertisement{Serial: "SN1", Host: "10.0.0.5", Port: 1}
	if !l.Offer(adv) {
		t.Fatalf("first offer should be accepted")
	}
	if l.Offer(adv) {
		t.Fatalf("duplicate offer should be rejected")
	}
	other := adv
	other.Host = "10.0.0.6"
	if !l.Offer(other) {
		t.Fatalf("same serial, different host should be accepted")
	}
}
