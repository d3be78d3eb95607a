package fsrs

import (
	"math"
	"testing"
)

func defaultConfig(v Version) Config {
	return NormalizeConfig(RawConfig{Version: v.String()})
}

func TestFirstReviewStabilityLookup(t *testing.T) {
	for _, v := range []Version{V5, V6} {
		cfg := defaultConfig(v)
		w := cfg.Weights()
		for _, r := range AllRatings {
			tr := nextState(State{}, r, cfg, 0)
			if tr.stability != w[r-1] {
				t.Errorf("%v rating %v: stability = %v, want weights[%d] = %v",
					v, r, tr.stability, r-1, w[r-1])
			}
			if tr.retrievability != nil {
				t.Errorf("%v rating %v: retrievability on first review should be nil", v, r)
			}
		}
	}
}

func TestFirstReviewDifficultyFormula(t *testing.T) {
	cfg := defaultConfig(V5)
	w := cfg.Weights()
	for _, r := range AllRatings {
		tr := nextState(State{}, r, cfg, 0)
		want := w[4] - math.Exp(w[5]*float64(r-1)) + 1
		if want < 1 {
			want = 1
		}
		if want > 10 {
			want = 10
		}
		if math.Abs(tr.difficulty-want) > 1e-9 {
			t.Errorf("rating %v: difficulty = %v, want %v", r, tr.difficulty, want)
		}
	}
}

func TestRepeatReviewRangeInvariants(t *testing.T) {
	states := []State{
		{Difficulty: 1, Stability: 0.1},
		{Difficulty: 5, Stability: 3},
		{Difficulty: 10, Stability: 100},
		{Difficulty: 2.5, Stability: 0.5},
	}
	elapsed := []int{0, 1, 7, 365}

	for _, v := range []Version{V5, V6} {
		cfg := defaultConfig(v)
		for _, st := range states {
			for _, e := range elapsed {
				for _, r := range AllRatings {
					tr := nextState(st, r, cfg, e)
					if tr.difficulty < 1 || tr.difficulty > 10 {
						t.Errorf("%v d=%v s=%v e=%d rating=%v: difficulty %v out of [1,10]",
							v, st.Difficulty, st.Stability, e, r, tr.difficulty)
					}
					if tr.stability < 0.1 {
						t.Errorf("%v d=%v s=%v e=%d rating=%v: stability %v below 0.1",
							v, st.Difficulty, st.Stability, e, r, tr.stability)
					}
					if tr.retrievability == nil {
						t.Errorf("%v: repeat review should report retrievability", v)
					}
				}
			}
		}
	}
}

func TestSameDayGuardRail(t *testing.T) {
	// Good/Easy on the same day must never shrink stability.
	for _, v := range []Version{V5, V6} {
		cfg := defaultConfig(v)
		for _, s := range []float64{0.1, 1, 3, 50, 365} {
			for _, r := range []Rating{Good, Easy} {
				tr := nextState(State{Difficulty: 5, Stability: s}, r, cfg, 0)
				if tr.stability < s {
					t.Errorf("%v s=%v rating=%v: same-day stability shrank to %v", v, s, r, tr.stability)
				}
			}
		}
	}
}

func TestSameDayDoesNotUseLongTermGrowth(t *testing.T) {
	// A same-day Good must grow stability far less than a multi-day Good.
	cfg := defaultConfig(V5)
	st := State{Difficulty: 5, Stability: 10}

	sameDay := nextState(st, Good, cfg, 0)
	multiDay := nextState(st, Good, cfg, 10)
	if sameDay.stability >= multiDay.stability {
		t.Errorf("same-day growth %v should be below multi-day growth %v",
			sameDay.stability, multiDay.stability)
	}
}

func TestForgetShrinksStability(t *testing.T) {
	for _, v := range []Version{V5, V6} {
		cfg := defaultConfig(v)
		st := State{Difficulty: 5, Stability: 30}
		tr := nextState(st, Again, cfg, 30)
		if tr.stability >= st.Stability {
			t.Errorf("%v: Again after 30 days: stability %v, want below %v", v, tr.stability, st.Stability)
		}
	}
}

func TestRecallGrowsStability(t *testing.T) {
	for _, v := range []Version{V5, V6} {
		cfg := defaultConfig(v)
		st := State{Difficulty: 5, Stability: 3}
		for _, r := range []Rating{Hard, Good, Easy} {
			tr := nextState(st, r, cfg, 3)
			if tr.stability <= st.Stability && r != Hard {
				t.Errorf("%v rating %v: stability %v did not grow from %v", v, r, tr.stability, st.Stability)
			}
		}

		// Easy must outgrow Good, Good must outgrow Hard.
		hard := nextState(st, Hard, cfg, 3).stability
		good := nextState(st, Good, cfg, 3).stability
		easy := nextState(st, Easy, cfg, 3).stability
		if !(easy > good && good > hard) {
			t.Errorf("%v: stability ordering easy=%v good=%v hard=%v", v, easy, good, hard)
		}
	}
}

func TestDifficultyDrift(t *testing.T) {
	cfg := defaultConfig(V5)
	st := State{Difficulty: 5, Stability: 3}

	again := nextState(st, Again, cfg, 3).difficulty
	easy := nextState(st, Easy, cfg, 3).difficulty
	if again <= st.Difficulty {
		t.Errorf("Again should raise difficulty: %v -> %v", st.Difficulty, again)
	}
	if easy >= st.Difficulty {
		t.Errorf("Easy should lower difficulty: %v -> %v", st.Difficulty, easy)
	}
}

func TestRepeatReviewRounding(t *testing.T) {
	cfg := defaultConfig(V5)
	tr := nextState(State{Difficulty: 5.3333, Stability: 3.7777}, Good, cfg, 4)

	if tr.difficulty != round2(tr.difficulty) {
		t.Errorf("difficulty %v not rounded to 2 decimals", tr.difficulty)
	}
	if tr.stability != round2(tr.stability) {
		t.Errorf("stability %v not rounded to 2 decimals", tr.stability)
	}
}

func TestOutOfRangeRatingClamped(t *testing.T) {
	cfg := defaultConfig(V5)
	lo := nextState(State{}, Rating(0), cfg, 0)
	if lo.stability != cfg.Weights()[0] {
		t.Errorf("rating 0 should clamp to Again: stability %v", lo.stability)
	}
	hi := nextState(State{}, Rating(9), cfg, 0)
	if hi.stability != cfg.Weights()[3] {
		t.Errorf("rating 9 should clamp to Easy: stability %v", hi.stability)
	}
}
