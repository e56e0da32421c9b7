/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Every extension keeps a single configuration entity, stored under a key
derived from the extension name. The initial value is loaded from the genesis
file (`conf.<extension>`) and can later be changed by the configuration owner
using an update message that carries a patch.
*/
package gconf
