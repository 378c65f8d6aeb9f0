package game

import (
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-simplemud/internal/storage"
	"github.com/pixil98/go-testutil"
)

func pad(n int) string {
	return strings.Repeat(" ", n)
}

func TestDefaultNeedForLevel(t *testing.T) {
	tests := map[string]struct {
		level int
		exp   int
	}{
		"level 1": {level: 1, exp: 0},
		"level 2": {level: 2, exp: 40},
		"level 3": {level: 3, exp: 96},
		"level 4": {level: 4, exp: 174},
		"level 6": {level: 6, exp: 437},
		"level 7": {level: 7, exp: 652},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "need", DefaultNeedForLevel(tt.level), tt.exp)
		})
	}
}

func TestWorld_Train(t *testing.T) {
	tests := map[string]struct {
		room          storage.Identifier
		experience    int
		expErr        string
		expLevel      int
		expStatPoints int
		expMaxHP      int
	}{
		"levels up": {
			room:          "gym",
			experience:    40,
			expLevel:      2,
			expStatPoints: 20,
			expMaxHP:      12,
		},
		"not enough experience": {
			room:          "gym",
			experience:    39,
			expErr:        "<red><bold>You don't have enough experience to train!</bold></red>",
			expLevel:      1,
			expStatPoints: 18,
			expMaxHP:      10,
		},
		"wrong room": {
			room:          "town",
			experience:    1000,
			expErr:        "<red><bold>You cannot train here!</bold></red>",
			expLevel:      1,
			expStatPoints: 18,
			expMaxHP:      10,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w, pub := newTestWorld(t)
			alice := join(t, w, "Alice", tt.room)
			alice.AddExperience(tt.experience)
			pub.reset()

			err := w.Train(alice)
			testutil.AssertEqual(t, "user error", userMessage(err), tt.expErr)
			testutil.AssertEqual(t, "level", alice.Level(), tt.expLevel)
			testutil.AssertEqual(t, "stat points", alice.StatPoints(), tt.expStatPoints)
			testutil.AssertEqual(t, "max hp", w.Attributes(alice).MaxHitPoints, tt.expMaxHP)
			if tt.expErr == "" {
				testutil.AssertEqual(t, "message", pub.messagesTo(alice.ID()), []string{"<green><bold>You are now level 2</bold></green>"})
			}
		})
	}
}

func TestWorld_PrintExperience(t *testing.T) {
	w, _ := newTestWorld(t)
	alice := join(t, w, "Alice", "town")
	alice.AddExperience(10)

	exp := "<white><bold> Level:         1<newline> Experience:    10/40 (25%)</bold></white>"
	testutil.AssertEqual(t, "experience", w.PrintExperience(alice), exp)
}

func TestWorld_PrintStats(t *testing.T) {
	w, _ := newTestWorld(t)
	alice := join(t, w, "Alice", "town")

	got := w.PrintStats(alice)
	for _, want := range []string{
		" Name:" + pad(10) + "Alice<newline>",
		" Rank:" + pad(10) + "REGULAR<newline>",
		" HP/Max:" + pad(8) + "10/10  (100%)<newline>",
		" Strength:" + pad(6) + "1" + pad(15) + "Accuracy:" + pad(6) + "3<newline>",
		" StatPoints:" + pad(4) + "18" + pad(14) + "Damage Absorb: 0<newline>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("stats missing %q in %q", want, got)
		}
	}
}

func TestWorld_PrintInventory(t *testing.T) {
	w, _ := newTestWorld(t)
	alice := join(t, w, "Alice", "town")
	give(t, w, alice, "sword", "rock")
	alice.UseWeapon(0)
	alice.SetMoney(12)

	got := w.PrintInventory(alice)
	for _, want := range []string{
		" Items:  Sword, Rock<newline>",
		" Weapon: Sword<newline>",
		" Armor: NONE!<newline>",
		" Money:    $12<newline>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("inventory missing %q in %q", want, got)
		}
	}
}

func TestWorld_Statbar(t *testing.T) {
	tests := map[string]struct {
		hp  int
		exp string
	}{
		"healthy": {hp: 10, exp: "<white><bold>[<green>10</green>/10] </bold></white>"},
		"hurt":    {hp: 5, exp: "<white><bold>[<yellow>5</yellow>/10] </bold></white>"},
		"dying":   {hp: 3, exp: "<white><bold>[<red>3</red>/10] </bold></white>"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w, _ := newTestWorld(t)
			alice := join(t, w, "Alice", "town")
			alice.SetHitPoints(tt.hp)
			testutil.AssertEqual(t, "statbar", w.Statbar(alice), tt.exp)
		})
	}
}

func TestWorld_WhoList(t *testing.T) {
	w, _ := newTestWorld(t)
	join(t, w, "Alice", "town")
	bob := join(t, w, "Bob", "town")
	bob.SetActive(false)
	bob.SetRank(RankGod)
	carol := NewPlayer("Carol")
	carol.SetRank(RankAdmin)
	mustAdd(t, w.Players.Add(carol))

	online := w.WhoList(false)
	if !strings.Contains(online, " Alice" + pad(12) + "| 1" + pad(9) + "| <green>Online  </green> | <white>REGULAR</white><newline>") {
		t.Errorf("missing Alice row in %q", online)
	}
	if !strings.Contains(online, " Bob" + pad(14) + "| 1" + pad(9) + "| <yellow>Inactive</yellow> | <yellow>GOD</yellow><newline>") {
		t.Errorf("missing Bob row in %q", online)
	}
	if strings.Contains(online, "Carol") {
		t.Errorf("offline player listed in %q", online)
	}

	all := w.WhoList(true)
	if !strings.Contains(all, " Carol" + pad(12) + "| 1" + pad(9) + "| <red>Offline </red> | <green>ADMIN</green><newline>") {
		t.Errorf("missing Carol row in %q", all)
	}
}

func TestWorld_TimeReport(t *testing.T) {
	now := testStart
	w, _ := newTestWorld(t, WithClock(func() time.Time { return now }))
	now = now.Add(26*time.Hour + 3*time.Second)

	exp := "<bold><cyan>The current system time is: 16:05:10 on 2024.03.10<newline>" +
		"The system has been up for: 1 day, 2 hours, 0 minutes, 3 seconds.</cyan></bold>"
	testutil.AssertEqual(t, "time", w.TimeReport(), exp)
}

func TestFormatUptime(t *testing.T) {
	tests := map[string]struct {
		d   time.Duration
		exp string
	}{
		"zero":    {d: 0, exp: "0 seconds"},
		"seconds": {d: 42 * time.Second, exp: "42 seconds"},
		"minutes": {d: 61 * time.Second, exp: "1 minute, 1 second"},
		"hours":   {d: 2*time.Hour + 5*time.Second, exp: "2 hours, 0 minutes, 5 seconds"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "uptime", formatUptime(tt.d), tt.exp)
		})
	}
}
