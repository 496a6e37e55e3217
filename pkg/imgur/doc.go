// Package imgur talks to the gallery feed and image hosts.
//
// A Dialer hands out Conns, each a single keep-alive HTTP connection to one
// host. Client fetches JSON gallery pages over a feed Conn and reports the
// end of a community's feed through PageResult.EndOfFeed rather than as an
// error. Feed entries decode into Image, whose loosely typed fields use
// FlexString and FlexInt.
package imgur
