package guard

import "testing"

func TestExposureCeilings(t *testing.T) {
	tr := NewExposureTracker(ExposureConfig{
		PerMatchLimit:   100,
		PerAccountLimit: 150,
		Enforce:         true,
	}, testLogger())

	if !tr.CanPlace("acc1", "m1", 60) {
		t.Fatal("first stake within both limits must be allowed")
	}
	tr.Add("acc1", "m1", 60)

	// 60 committed on m1; another 50 would cross the per-match ceiling.
	if tr.CanPlace("acc1", "m1", 50) {
		t.Fatal("per-match ceiling must block the stake")
	}
	// The same 50 on a different match only counts against the account
	// ceiling.
	if !tr.CanPlace("acc1", "m2", 50) {
		t.Fatal("a different match has its own per-match budget")
	}
	tr.Add("acc1", "m2", 50)

	// 110 committed account-wide; 50 more crosses the account ceiling even
	// on a fresh match.
	if tr.CanPlace("acc1", "m3", 50) {
		t.Fatal("per-account ceiling must block the stake")
	}
	// A different account is unaffected.
	if !tr.CanPlace("acc2", "m3", 50) {
		t.Fatal("accounts must not share exposure")
	}
}

func TestReserveAllOrNothing(t *testing.T) {
	tr := NewExposureTracker(ExposureConfig{
		PerMatchLimit:   100,
		PerAccountLimit: 100,
		Enforce:         true,
	}, testLogger())

	tr.Add("acc2", "m1", 80)

	// acc2's share breaches its ceiling, so acc1's share must not be
	// committed either.
	if tr.Reserve("m1", []Stake{{"acc1", 50}, {"acc2", 50}}) {
		t.Fatal("a breaching stake must fail the whole reservation")
	}
	if total, _ := tr.Exposure("acc1", "m1"); total != 0 {
		t.Fatalf("failed reservation must commit nothing, acc1 holds %v", total)
	}
	if total, _ := tr.Exposure("acc2", "m1"); total != 80 {
		t.Fatalf("failed reservation must commit nothing, acc2 holds %v", total)
	}

	if !tr.Reserve("m1", []Stake{{"acc1", 50}, {"acc2", 20}}) {
		t.Fatal("a reservation within both ceilings must succeed")
	}
	if total, _ := tr.Exposure("acc1", "m1"); total != 50 {
		t.Fatalf("acc1 = %v, want 50", total)
	}
	if total, _ := tr.Exposure("acc2", "m1"); total != 100 {
		t.Fatalf("acc2 = %v, want 100", total)
	}
}

func TestReserveChecksSameAccountJointly(t *testing.T) {
	tr := NewExposureTracker(ExposureConfig{
		PerMatchLimit:   100,
		PerAccountLimit: 100,
		Enforce:         true,
	}, testLogger())

	// Each stake fits alone; together they cross the ceiling.
	if tr.Reserve("m1", []Stake{{"acc1", 60}, {"acc1", 60}}) {
		t.Fatal("stakes on one account must be checked as a sum")
	}
	if total, _ := tr.Exposure("acc1", "m1"); total != 0 {
		t.Fatalf("acc1 = %v, want 0", total)
	}
}

func TestReserveEnforceOffStillRecords(t *testing.T) {
	tr := NewExposureTracker(ExposureConfig{Enforce: false}, testLogger())

	if !tr.Reserve("m1", []Stake{{"acc1", 1e6}}) {
		t.Fatal("disabled enforcement must allow any reservation")
	}
	if total, _ := tr.Exposure("acc1", "m1"); total != 1e6 {
		t.Fatalf("acc1 = %v, the stake must still be recorded", total)
	}
}

func TestExposureLimitIsInclusive(t *testing.T) {
	tr := NewExposureTracker(ExposureConfig{
		PerMatchLimit:   100,
		PerAccountLimit: 1000,
		Enforce:         true,
	}, testLogger())

	if !tr.CanPlace("acc1", "m1", 100) {
		t.Fatal("a stake landing exactly on the limit must be allowed")
	}
	tr.Add("acc1", "m1", 100)
	if tr.CanPlace("acc1", "m1", 0.01) {
		t.Fatal("anything past the limit must be blocked")
	}
}

func TestExposureEnforceOff(t *testing.T) {
	tr := NewExposureTracker(ExposureConfig{
		PerMatchLimit:   1,
		PerAccountLimit: 1,
		Enforce:         false,
	}, testLogger())

	if !tr.CanPlace("acc1", "m1", 1e6) {
		t.Fatal("disabled enforcement must allow any stake")
	}
}

func TestExposureReduceAndReset(t *testing.T) {
	tr := NewExposureTracker(ExposureConfig{
		PerMatchLimit:   100,
		PerAccountLimit: 200,
		Enforce:         true,
	}, testLogger())

	tr.Add("acc1", "m1", 80)
	tr.Add("acc1", "m2", 80)

	tr.Reduce("acc1", "m1", 30)
	total, match := tr.Exposure("acc1", "m1")
	if total != 130 || match != 50 {
		t.Fatalf("after Reduce: total=%v match=%v, want 130/50", total, match)
	}

	tr.ResetMatch("acc1", "m2")
	total, match = tr.Exposure("acc1", "m2")
	if total != 50 || match != 0 {
		t.Fatalf("after ResetMatch: total=%v match=%v, want 50/0", total, match)
	}

	// Over-reduction floors at zero rather than going negative.
	tr.Reduce("acc1", "m1", 500)
	total, match = tr.Exposure("acc1", "m1")
	if total != 0 || match != 0 {
		t.Fatalf("after over-reduction: total=%v match=%v, want 0/0", total, match)
	}
}
