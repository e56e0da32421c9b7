/*
Package custody defines the common interfaces that weave together the
subpackages of the custody application, as well as implementations of some
of the simpler components.

We pass context through context.Context between app, middleware, and
handlers. To do so, this package defines some common keys to store info,
such as block height and chain id. Each extension, such as sigs, may add its
own keys to enrich the context with specific data.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height, header).

All state lives in a key value store. Every state transition is executed by
a Handler that reads and writes the store it was given. The application
wraps each transition in a cache so that a failing transition leaves no
trace.
*/
package custody
