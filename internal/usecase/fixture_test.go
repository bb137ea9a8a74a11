package usecase

import (
	"fmt"
	"strings"
)

// matchSummaryXML renders a soccer-extended summary with a 2-1 scoreline,
// two home players (both starters) and one away substitute.
func matchSummaryXML(eventID string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<sport_event_summary xmlns="%[1]s" generated_at="2024-08-20T10:00:00+00:00">
  <sport_event id="%[2]s" start_time="2024-08-16T19:00:00+00:00" start_time_confirmed="true">
    <sport_event_context>
      <sport id="sr:sport:1" name="Soccer"/>
      <category id="sr:category:1" name="England" country_code="ENG"/>
      <competition id="sr:competition:17" name="Premier League" gender="men"/>
      <season id="sr:season:118689" name="Premier League 24/25" start_date="2024-08-16" end_date="2025-05-25" year="24/25" competition_id="sr:competition:17"/>
      <round number="1"/>
    </sport_event_context>
    <coverage type="sport_event"/>
    <competitors>
      <competitor id="sr:competitor:35" name="Manchester United" country="England" abbreviation="MUN" qualifier="home"/>
      <competitor id="sr:competitor:37" name="Fulham FC" country="England" abbreviation="FUL" qualifier="away"/>
    </competitors>
    <venue id="sr:venue:1" name="Old Trafford" capacity="74310" city_name="Manchester" country_name="England"/>
    <sport_event_conditions>
      <attendance count="73297"/>
      <referees>
        <referee id="sr:referee:1" name="Jones, Robert" type="main_referee"/>
      </referees>
    </sport_event_conditions>
  </sport_event>
  <sport_event_status status="closed" match_status="ended" home_score="2" away_score="1" winner_id="sr:competitor:35">
    <period_scores>
      <period_score home_score="1" away_score="0" type="regular_period" number="1"/>
    </period_scores>
  </sport_event_status>
  <statistics>
    <totals>
      <competitors>
        <competitor id="sr:competitor:35" name="Manchester United" abbreviation="MUN" qualifier="home">
          <statistics ball_possession="55.5" shots_total="14" corner_kicks="7"/>
          <players>
            <player id="sr:player:1" name="Fernandes, Bruno" starter="true">
              <statistics goals_scored="1" assists="0" minutes_played="90"/>
            </player>
            <player id="sr:player:2" name="Zirkzee, Joshua" starter="true">
              <statistics goals_scored="1" assists="1" minutes_played="75" rating="7.5"/>
            </player>
          </players>
        </competitor>
        <competitor id="sr:competitor:37" name="Fulham FC" abbreviation="FUL" qualifier="away">
          <statistics ball_possession="44.5" shots_total="10" corner_kicks="3"/>
          <players>
            <player id="sr:player:3" name="Jimenez, Raul" starter="false">
              <statistics goals_scored="1" assists="0" minutes_played="20"/>
            </player>
          </players>
        </competitor>
      </competitors>
    </totals>
  </statistics>
</sport_event_summary>`, SummaryNamespace, eventID)
}

// homeSquadSummaryXML renders a 2-1 home win where only the home side lists
// players: two starters and one substitute.
func homeSquadSummaryXML(eventID string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<sport_event_summary xmlns="%[1]s">
  <sport_event id="%[2]s" start_time="2024-09-14T14:00:00+00:00">
    <sport_event_context>
      <competition id="sr:competition:17" name="Premier League"/>
      <season id="sr:season:118689" name="Premier League 24/25"/>
    </sport_event_context>
    <competitors>
      <competitor id="sr:competitor:44" name="Liverpool FC" qualifier="home"/>
      <competitor id="sr:competitor:14" name="Nottingham Forest" qualifier="away"/>
    </competitors>
  </sport_event>
  <sport_event_status status="closed" match_status="ended" home_score="2" away_score="1"/>
  <statistics>
    <totals>
      <competitors>
        <competitor id="sr:competitor:44" name="Liverpool FC" qualifier="home">
          <statistics ball_possession="68" shots_total="21"/>
          <players>
            <player id="sr:player:10" name="Salah, Mohamed" starter="true">
              <statistics goals_scored="1" minutes_played="90"/>
            </player>
            <player id="sr:player:11" name="Diaz, Luis" starter="true">
              <statistics goals_scored="1" minutes_played="80"/>
            </player>
            <player id="sr:player:12" name="Nunez, Darwin" starter="false">
              <statistics goals_scored="0" minutes_played="10"/>
            </player>
          </players>
        </competitor>
        <competitor id="sr:competitor:14" name="Nottingham Forest" qualifier="away">
          <statistics ball_possession="32" shots_total="6"/>
        </competitor>
      </competitors>
    </totals>
  </statistics>
</sport_event_summary>`, SummaryNamespace, eventID)
}

// withoutPlayers drops every players block from a summary.
func withoutPlayers(doc string) string {
	for {
		start := strings.Index(doc, "<players>")
		if start < 0 {
			return doc
		}
		end := strings.Index(doc, "</players>")
		doc = doc[:start] + doc[end+len("</players>"):]
	}
}
